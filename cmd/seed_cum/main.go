// seed_cum genera un script SQL para poblar el catálogo de medicamentos a
// partir del listado CUM de INVIMA (CSV separado por punto y coma, ISO-8859-1).
//
// Uso: go run ./cmd/seed_cum [ruta/cum.csv]
// Por defecto busca cum.csv en el directorio actual.
// Escribe: internal/infrastructure/postgres/migrations/010_seed_medications.sql
package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type medicationRow struct {
	cum          string
	name         string
	presentation string
	unit         string
}

func main() {
	csvPath := "cum.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	// El listado de INVIMA viene en ISO-8859-1 y separado por punto y coma.
	r := csv.NewReader(transform.NewReader(f, charmap.ISO8859_1.NewDecoder()))
	r.Comma = ';'
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer cabecera: %v\n", err)
		os.Exit(1)
	}
	col := indexColumns(header)
	for _, required := range []string{"expediente", "consecutivocum", "producto"} {
		if _, ok := col[required]; !ok {
			fmt.Fprintf(os.Stderr, "Columna requerida ausente en el CSV: %s\n", required)
			os.Exit(1)
		}
	}

	seen := make(map[string]bool)
	var rows []medicationRow
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Leer fila: %v\n", err)
			os.Exit(1)
		}
		exp := field(rec, col, "expediente")
		consecutivo := field(rec, col, "consecutivocum")
		name := field(rec, col, "producto")
		if exp == "" || consecutivo == "" || name == "" {
			continue
		}
		// El CUM es expediente-consecutivo; el listado trae duplicados por
		// presentación comercial, nos quedamos con la primera aparición.
		cum := exp + "-" + consecutivo
		if seen[cum] {
			continue
		}
		seen[cum] = true
		rows = append(rows, medicationRow{
			cum:          cum,
			name:         name,
			presentation: field(rec, col, "descripcioncomercial"),
			unit:         field(rec, col, "unidadmedida"),
		})
	}

	moduleRoot := findModuleRoot()
	outPath := filepath.Join(moduleRoot, "internal", "infrastructure", "postgres", "migrations", "010_seed_medications.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	out.WriteString("-- Catálogo de medicamentos (Código Único de Medicamento, INVIMA)\n")
	out.WriteString("-- Generado desde el listado CUM oficial\n\n")

	for _, m := range rows {
		fmt.Fprintf(out, "INSERT INTO medications (id, cum, name, presentation, unit, price)\n")
		fmt.Fprintf(out, "VALUES (gen_random_uuid(), '%s', '%s', '%s', '%s', 0)\n",
			escapeSQL(m.cum), escapeSQL(m.name), escapeSQL(m.presentation), escapeSQL(m.unit))
		out.WriteString("ON CONFLICT (cum) DO UPDATE SET name = EXCLUDED.name, presentation = EXCLUDED.presentation, unit = EXCLUDED.unit;\n")
		fmt.Fprintf(out, "INSERT INTO medication_stock (medication_id, quantity, min_stock)\n")
		fmt.Fprintf(out, "SELECT id, 0, 0 FROM medications WHERE cum = '%s'\n", escapeSQL(m.cum))
		out.WriteString("ON CONFLICT (medication_id) DO NOTHING;\n")
	}

	fmt.Printf("Generado %s: %d medicamentos\n", outPath, len(rows))
}

// indexColumns mapea cada cabecera normalizada (minúsculas, sin espacios) a su
// índice. El listado de INVIMA varía el casing entre publicaciones.
func indexColumns(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(h), " ", ""))
		col[key] = i
	}
	return col
}

func field(rec []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
