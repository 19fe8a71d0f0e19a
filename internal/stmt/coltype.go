// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package stmt

import (
	"fmt"
	"strings"

	"github.com/xwb1989/sqlparser"

	dberrors "dbgate/cli/internal/errors"
)

// Column type text is client supplied and cannot be bound, so it is the one
// place where request text reaches DDL verbatim. The guards below keep it to a
// single column definition.

// breakouts are sequences that end or comment out the surrounding statement.
var breakouts = []string{";", "`", "--", "/*", "*/", "#", "\\", "\x00"}

func invalidType(typ, reason string) error {
	return dberrors.New(dberrors.InvalidColumnType, fmt.Sprintf("column type %q rejected: %s", typ, reason))
}

func checkBreakouts(typ string) error {
	if strings.TrimSpace(typ) == "" {
		return invalidType(typ, "empty")
	}
	for _, seq := range breakouts {
		if strings.Contains(typ, seq) {
			return invalidType(typ, fmt.Sprintf("contains %q", seq))
		}
	}
	return nil
}

// mysqlTypeAliases maps MySQL type synonyms the parser grammar lacks onto
// an equivalent type it knows. The rewrite only feeds the parse check; the
// DDL keeps the text as the client sent it.
var mysqlTypeAliases = map[string]string{
	"BOOL":              "TINYINT(1)",
	"BOOLEAN":           "TINYINT(1)",
	"SERIAL":            "BIGINT UNSIGNED NOT NULL AUTO_INCREMENT",
	"DEC":               "DECIMAL",
	"FIXED":             "DECIMAL",
	"INT1":              "TINYINT",
	"INT2":              "SMALLINT",
	"INT3":              "MEDIUMINT",
	"MIDDLEINT":         "MEDIUMINT",
	"INT4":              "INT",
	"INT8":              "BIGINT",
	"FLOAT4":            "FLOAT",
	"FLOAT8":            "DOUBLE",
	"DOUBLE PRECISION":  "DOUBLE",
	"NCHAR":             "CHAR",
	"NVARCHAR":          "VARCHAR",
	"NATIONAL CHAR":     "CHAR",
	"NATIONAL VARCHAR":  "VARCHAR",
	"CHARACTER":         "CHAR",
	"CHARACTER VARYING": "VARCHAR",
	"LONG":              "MEDIUMTEXT",
	"LONG VARCHAR":      "MEDIUMTEXT",
	"LONG VARBINARY":    "MEDIUMBLOB",
}

func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// leadingWord splits s into its first bare word and the remainder.
func leadingWord(s string) (word, rest string) {
	s = strings.TrimLeft(s, " \t")
	i := 0
	for i < len(s) && isWordByte(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

// parsableMySQLType rewrites a leading type synonym. Two-word synonyms win
// over their first word (DOUBLE PRECISION, LONG VARCHAR).
func parsableMySQLType(typ string) string {
	first, rest := leadingWord(typ)
	if second, after := leadingWord(rest); second != "" {
		if alias, ok := mysqlTypeAliases[strings.ToUpper(first+" "+second)]; ok {
			return alias + after
		}
	}
	if alias, ok := mysqlTypeAliases[strings.ToUpper(first)]; ok {
		return alias + rest
	}
	return typ
}

// checkMySQLColumnType parses a probe CREATE TABLE holding typ as the only
// column and requires exactly one column definition and nothing else. Quoted
// literals are allowed here (ENUM('a','b'), DEFAULT 'x') because the parser
// establishes they stay inside the definition.
func checkMySQLColumnType(typ string) error {
	if err := checkBreakouts(typ); err != nil {
		return err
	}
	probe := "CREATE TABLE `probe` (`c` " + parsableMySQLType(typ) + ")"
	parsed, err := sqlparser.ParseStrictDDL(probe)
	if err != nil {
		return invalidType(typ, "not a column definition")
	}
	ddl, ok := parsed.(*sqlparser.DDL)
	if !ok || ddl.Action != sqlparser.CreateStr || ddl.TableSpec == nil {
		return invalidType(typ, "not a column definition")
	}
	if len(ddl.TableSpec.Columns) != 1 || len(ddl.TableSpec.Indexes) != 0 || strings.TrimSpace(ddl.TableSpec.Options) != "" {
		return invalidType(typ, "must describe exactly one column")
	}
	return nil
}

// checkGenericColumnType is used where no grammar is available: type names,
// spaces, and parenthesised argument lists (NUMERIC(10,2), VARCHAR[]) only.
// Commas are accepted inside parentheses and nowhere else.
func checkGenericColumnType(typ string) error {
	if err := checkBreakouts(typ); err != nil {
		return err
	}
	depth := 0
	for i := 0; i < len(typ); i++ {
		c := typ[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == ' ', c == '[', c == ']':
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth < 0 {
				return invalidType(typ, "unbalanced parentheses")
			}
		case c == ',':
			if depth == 0 {
				return invalidType(typ, "must describe exactly one column")
			}
		default:
			return invalidType(typ, fmt.Sprintf("contains %q", c))
		}
	}
	if depth != 0 {
		return invalidType(typ, "unbalanced parentheses")
	}
	return nil
}
