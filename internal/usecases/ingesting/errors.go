package ingesting

import (
	"fmt"
	"strings"
)

// RequiredColumns são as colunas obrigatórias do CSV, comparadas de forma
// case-sensitive contra o cabeçalho do arquivo.
var RequiredColumns = []string{"date", "product", "region", "revenue", "leads", "conversions"}

// SchemaError indica que o cabeçalho do CSV não contém todas as colunas
// obrigatórias. O upload inteiro é rejeitado e nada é persistido.
type SchemaError struct {
	MissingColumns []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf(
		"o CSV deve conter as colunas: %s (ausentes: %s)",
		strings.Join(RequiredColumns, ", "),
		strings.Join(e.MissingColumns, ", "),
	)
}

// IsSchemaError verifica se o erro é uma falha de schema do CSV.
func IsSchemaError(err error) bool {
	_, ok := err.(*SchemaError)
	return ok
}
