package etl

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/BartekS5/salesflow/pkg/database"
	"github.com/BartekS5/salesflow/pkg/models"
)

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

// Dialect holds the statements that differ between the supported databases.
type Dialect struct {
	Driver string
}

func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case database.DriverMySQL, database.DriverSQLServer:
		return Dialect{Driver: driver}, nil
	default:
		return Dialect{}, validationErrorf("unsupported database driver %q", driver)
	}
}

func checkIdentifier(name string) error {
	if !identifierRe.MatchString(name) {
		return validationErrorf("invalid table name %q", name)
	}
	return nil
}

func (d Dialect) placeholder(i int) string {
	if d.Driver == database.DriverSQLServer {
		return fmt.Sprintf("@p%d", i+1)
	}
	return "?"
}

func columnDefs(fields []models.FieldConfig) string {
	defs := make([]string, len(fields))
	for i, f := range fields {
		def := f.Name + " " + f.SQLType
		if f.PrimaryKey {
			def += " PRIMARY KEY"
		}
		defs[i] = def
	}
	return strings.Join(defs, ",\n    ")
}

func (d Dialect) CreateTableSQL(table string) string {
	body := fmt.Sprintf("CREATE TABLE %s (\n    %s\n)", table, columnDefs(models.SalesFields))
	if d.Driver == database.DriverSQLServer {
		return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL\n%s", table, body)
	}
	return strings.Replace(body, "CREATE TABLE", "CREATE TABLE IF NOT EXISTS", 1)
}

// ClearSQL empties the table inside the load transaction. TRUNCATE commits
// implicitly on MySQL, so it uses DELETE there.
func (d Dialect) ClearSQL(table string) string {
	if d.Driver == database.DriverSQLServer {
		return "TRUNCATE TABLE " + table
	}
	return "DELETE FROM " + table
}

func (d Dialect) InsertSQL(table string) string {
	cols := models.ColumnNames()
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = d.placeholder(i)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
}
