package datastore

import "fmt"

// Query templates. All operate under a fixed empty-string tenant;
// multi-tenancy is schema-reserved but unused by the core.

func rawInsertTemplate(table string) string {
	return fmt.Sprintf(
		`UPDATE %s USING TTL ? SET data = data + ? WHERE tenant='' AND rollup=? AND period=? AND path=? AND time=?`,
		table)
}

func rollupInsertTemplate(table string) string {
	return fmt.Sprintf(
		`UPDATE %s USING TTL ? SET data = ? WHERE tenant='' AND rollup=? AND period=? AND path=? AND time=?`,
		table)
}

func rangeFetchTemplate(table string) string {
	return fmt.Sprintf(
		`SELECT path, data, time FROM %s WHERE path IN ? AND tenant='' AND rollup=? AND period=? AND time>=? AND time<=? ORDER BY time ASC`,
		table)
}

func rollupFetchTemplate(table string) string {
	return fmt.Sprintf(
		`SELECT data FROM %s WHERE path=? AND tenant='' AND rollup=? AND period=? AND time>=? AND time<? ORDER BY time ASC`,
		table)
}

func useKeyspaceTemplate(keyspace string) string {
	return fmt.Sprintf(`USE %s`, keyspace)
}
