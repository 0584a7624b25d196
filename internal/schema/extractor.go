package schema

import (
	"context"
	"fmt"
	"sort"

	"dbjson/internal/db"
	"dbjson/internal/errs"
)

// DefaultNamespace is the schema namespace extracted when none is given.
const DefaultNamespace = "public"

// Extract reads tables, columns, primary keys, and foreign keys from the
// given namespace of a live database and returns an immutable Schema.
// Fails with errs.KindExtractFailed on any driver error.
func Extract(ctx context.Context, conn db.DB, namespace string) (*Schema, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	names, err := listTables(ctx, conn, namespace)
	if err != nil {
		return nil, errs.Wrap(errs.KindExtractFailed, "list tables", err)
	}

	s := &Schema{Tables: make(map[string]*Table, len(names))}
	for _, name := range names {
		cols, err := listColumns(ctx, conn, namespace, name)
		if err != nil {
			return nil, errs.Wrap(errs.KindExtractFailed, fmt.Sprintf("list columns for %q", name), err)
		}
		pk, err := listPrimaryKey(ctx, conn, namespace, name)
		if err != nil {
			return nil, errs.Wrap(errs.KindExtractFailed, fmt.Sprintf("list primary key for %q", name), err)
		}
		s.Tables[name] = &Table{Name: name, Columns: cols, PrimaryKey: pk}
	}

	rels, err := listForeignKeys(ctx, conn, namespace)
	if err != nil {
		return nil, errs.Wrap(errs.KindExtractFailed, "list foreign keys", err)
	}
	s.Relationships = rels

	return s, nil
}

func listTables(ctx context.Context, conn db.DB, namespace string) ([]string, error) {
	const q = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1
		  AND table_type   = 'BASE TABLE'
		ORDER BY table_name`

	rows, err := conn.Query(ctx, q, namespace)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// listColumns reads ordinal-ordered column metadata. IsGenerated covers both
// GENERATED ALWAYS AS (...) STORED columns and GENERATED ALWAYS AS IDENTITY
// columns — information_schema.columns.is_generated alone misses the latter.
func listColumns(ctx context.Context, conn db.DB, namespace, table string) ([]*Column, error) {
	const q = `
		SELECT
			column_name,
			data_type,
			is_nullable = 'YES'                                       AS is_nullable,
			column_default IS NOT NULL                                AS has_default,
			is_generated = 'ALWAYS'
				OR (is_identity = 'YES' AND identity_generation = 'ALWAYS') AS is_generated
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`

	rows, err := conn.Query(ctx, q, namespace, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []*Column
	for rows.Next() {
		c := &Column{}
		if err := rows.Scan(&c.Name, &c.Type, &c.IsNullable, &c.HasDefault, &c.IsGenerated); err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

func listPrimaryKey(ctx context.Context, conn db.DB, namespace, table string) ([]string, error) {
	const q = `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name
		 AND tc.table_schema    = kcu.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY'
		  AND tc.table_schema    = $1
		  AND tc.table_name      = $2
		ORDER BY kcu.ordinal_position`

	rows, err := conn.Query(ctx, q, namespace, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pk []string
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return nil, err
		}
		pk = append(pk, col)
	}
	return pk, rows.Err()
}

// listForeignKeys reads FK constraints from pg_catalog rather than
// information_schema: composite keys need the child/parent column arrays
// paired by ordinal position, which information_schema's
// key_column_usage / constraint_column_usage join does not guarantee.
// pg_constraint.conkey/confkey are parallel attnum arrays; unnest with a
// shared ordinality preserves the pairing.
func listForeignKeys(ctx context.Context, conn db.DB, namespace string) ([]*Relationship, error) {
	const q = `
		SELECT
			con.conname,
			rel.relname   AS from_table,
			a.attname     AS from_column,
			frel.relname  AS to_table,
			fa.attname    AS to_column,
			con.confdeltype,
			con.confupdtype,
			ord.ord
		FROM pg_constraint con
		JOIN pg_namespace ns ON ns.oid = con.connamespace
		JOIN pg_class rel    ON rel.oid = con.conrelid
		JOIN pg_class frel   ON frel.oid = con.confrelid
		CROSS JOIN LATERAL unnest(con.conkey, con.confkey) WITH ORDINALITY AS ord(from_attnum, to_attnum, ord)
		JOIN pg_attribute a  ON a.attrelid  = con.conrelid  AND a.attnum = ord.from_attnum
		JOIN pg_attribute fa ON fa.attrelid = con.confrelid AND fa.attnum = ord.to_attnum
		WHERE con.contype = 'f'
		  AND ns.nspname  = $1
		ORDER BY con.conname, ord.ord`

	rows, err := conn.Query(ctx, q, namespace)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type byName struct {
		rel         *Relationship
		deleteCode  string
		updateCode  string
	}
	grouped := make(map[string]*byName)
	var order []string

	for rows.Next() {
		var conname, fromTable, fromCol, toTable, toCol, delCode, updCode string
		var ord int
		if err := rows.Scan(&conname, &fromTable, &fromCol, &toTable, &toCol, &delCode, &updCode, &ord); err != nil {
			return nil, err
		}
		g, ok := grouped[conname]
		if !ok {
			g = &byName{rel: &Relationship{ID: conname, FromTable: fromTable, ToTable: toTable}, deleteCode: delCode, updateCode: updCode}
			grouped[conname] = g
			order = append(order, conname)
		}
		g.rel.FromColumns = append(g.rel.FromColumns, fromCol)
		g.rel.ToColumns = append(g.rel.ToColumns, toCol)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Strings(order)
	rels := make([]*Relationship, 0, len(order))
	for _, name := range order {
		g := grouped[name]
		g.rel.OnDelete = actionFromCode(g.deleteCode[0])
		g.rel.OnUpdate = actionFromCode(g.updateCode[0])
		rels = append(rels, g.rel)
	}
	return rels, nil
}
