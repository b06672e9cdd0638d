package main

import (
	"database/sql"
	"fmt"
	"os"
	"reflect"
	"runtime"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rowbind/rowbind/pkg/config"
	"github.com/rowbind/rowbind/pkg/logger"
	"github.com/rowbind/rowbind/pkg/mapper"
	"github.com/rowbind/rowbind/pkg/rowsource"

	// SQL drivers available to the query command
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "rowbind",
		Short: "rowbind - reflective SQL row mapping toolkit",
		Long: `rowbind maps SQL result rows into struct values by matching column labels
to properties under configurable naming rules. The describe command shows how
a result-set shape binds to a declared target; the query command runs a query
and emits the mapped rows as JSON.`,
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("rowbind v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	var configFile, targetFile string
	var columns []string

	describeCmd := &cobra.Command{
		Use:   "describe",
		Short: "Show how a column signature binds to a target shape",
		Long: `Resolve a mapping plan for the given column labels against a target shape
declared in a YAML file, and report which columns bind to which properties.

Example:
  rowbind describe --target user.yaml --columns id,user_id,full_name`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(configFile, targetFile, columns)
		},
	}
	describeCmd.Flags().StringVar(&configFile, "config", "", "mapping configuration YAML (optional)")
	describeCmd.Flags().StringVar(&targetFile, "target", "", "target shape YAML (required)")
	describeCmd.Flags().StringSliceVar(&columns, "columns", nil, "result-set column labels in order (required)")
	_ = describeCmd.MarkFlagRequired("target")
	_ = describeCmd.MarkFlagRequired("columns")
	root.AddCommand(describeCmd)

	var driver, dsn, query string
	var limit int

	queryCmd := &cobra.Command{
		Use:   "query",
		Short: "Run a query and emit mapped rows as JSON",
		Long: `Execute a SQL query, map each result row into the declared target shape,
and print the mapped instances as JSON lines.

Example:
  rowbind query --driver sqlite --dsn app.db --sql 'SELECT * FROM users' --target user.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(configFile, targetFile, driver, dsn, query, limit)
		},
	}
	queryCmd.Flags().StringVar(&configFile, "config", "", "mapping configuration YAML (optional)")
	queryCmd.Flags().StringVar(&targetFile, "target", "", "target shape YAML (required)")
	queryCmd.Flags().StringVar(&driver, "driver", "sqlite", "database driver (sqlite, mysql, pgx)")
	queryCmd.Flags().StringVar(&dsn, "dsn", "", "database connection string (required)")
	queryCmd.Flags().StringVar(&query, "sql", "", "query to execute (required)")
	queryCmd.Flags().IntVar(&limit, "limit", 0, "maximum rows to emit (0 = all)")
	_ = queryCmd.MarkFlagRequired("target")
	_ = queryCmd.MarkFlagRequired("dsn")
	_ = queryCmd.MarkFlagRequired("sql")
	root.AddCommand(queryCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(configFile string) (*config.MappingConfig, error) {
	cfg := config.NewMappingConfig()
	if configFile != "" {
		if err := config.Load(configFile, cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := logger.Init(logger.Config{
		Level:       cfg.Logging.Level,
		Encoding:    cfg.Logging.Encoding,
		Development: cfg.Logging.Development,
	}); err != nil {
		return nil, err
	}

	return cfg, nil
}

func runDescribe(configFile, targetFile string, columns []string) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}

	targetType, err := loadTargetType(targetFile)
	if err != nil {
		return err
	}

	factory := mapper.NewFactory(cfg, nil)
	if !factory.Supports(targetType) {
		return fmt.Errorf("target %s has no mappable properties", targetType.String())
	}

	plan, err := factory.Resolver().Resolve(targetType, columns)
	if err != nil {
		return err
	}

	byColumn := make(map[int]string, plan.Len())
	for i, col := range plan.Columns() {
		byColumn[col] = plan.Properties()[i]
	}

	fmt.Printf("target: %s\n", targetType.String())
	fmt.Printf("matched %d of %d columns\n\n", plan.Len(), len(columns))
	for i, label := range columns {
		if property, ok := byColumn[i+1]; ok {
			fmt.Printf("  %2d  %-24s -> %s\n", i+1, label, property)
		} else {
			fmt.Printf("  %2d  %-24s    (unmapped)\n", i+1, label)
		}
	}
	return nil
}

func runQuery(configFile, targetFile, driver, dsn, query string, limit int) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}

	targetType, err := loadTargetType(targetFile)
	if err != nil {
		return err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	start := time.Now()
	sqlRows, err := db.Query(query) //nolint:gosec // G201: query is operator-supplied by design
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	defer func() { _ = sqlRows.Close() }()

	rows, err := rowsource.FetchAll(sqlRows)
	if err != nil {
		return err
	}

	logger.Get().Info("rows fetched",
		zap.Int("rows", len(rows)),
		zap.Duration("elapsed", time.Since(start)))

	factory := mapper.NewFactory(cfg, nil)
	m, err := factory.BuildMapper(targetType)
	if err != nil {
		return err
	}

	if len(rows) > 0 {
		labels, err := rowsource.Labels(rows[0])
		if err != nil {
			return err
		}
		// Resolve once, reuse the plan for every row
		if m, err = m.SpecializeFor(labels); err != nil {
			return err
		}
	}

	encoder := json.NewEncoder(os.Stdout)
	for i, row := range rows {
		if limit > 0 && i >= limit {
			break
		}
		instance, err := m.Map(row)
		if err != nil {
			return err
		}
		if err := encoder.Encode(instance); err != nil {
			return err
		}
	}
	return nil
}

// targetSpec declares a mappable shape in YAML, compiled to a struct type at
// runtime with reflect.StructOf.
type targetSpec struct {
	Fields []fieldSpec `yaml:"fields"`
}

type fieldSpec struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Column string `yaml:"column"`
}

var fieldTypes = map[string]reflect.Type{
	"string": reflect.TypeOf(""),
	"int":    reflect.TypeOf(int64(0)),
	"float":  reflect.TypeOf(float64(0)),
	"bool":   reflect.TypeOf(false),
	"time":   reflect.TypeOf(time.Time{}),
	"bytes":  reflect.TypeOf([]byte(nil)),
	"uuid":   reflect.TypeOf(uuid.UUID{}),
}

func loadTargetType(targetFile string) (reflect.Type, error) {
	var spec targetSpec
	if err := config.Load(targetFile, &spec); err != nil {
		return nil, err
	}
	if len(spec.Fields) == 0 {
		return nil, fmt.Errorf("target file %s declares no fields", targetFile)
	}

	structFields := make([]reflect.StructField, 0, len(spec.Fields))
	for _, f := range spec.Fields {
		fieldType, ok := fieldTypes[f.Type]
		if !ok {
			return nil, fmt.Errorf("field %s has unknown type %q", f.Name, f.Type)
		}

		field := reflect.StructField{
			Name: f.Name,
			Type: fieldType,
		}
		if f.Column != "" {
			field.Tag = reflect.StructTag(fmt.Sprintf(`%s:"%s"`, mapper.ColumnTag, f.Column))
		}
		structFields = append(structFields, field)
	}

	return reflect.StructOf(structFields), nil
}
