package datastore

import "github.com/gocql/gocql"

// gocqlSession is the production dbSession, backed by a live Cassandra
// connection pool. Statement text is routed through a stmtCache so the
// rest of the package only ever talks in terms of a table name and a
// bound value set.
type gocqlSession struct {
	session *gocql.Session
	stmts   *stmtCache
}

func newGocqlSession(session *gocql.Session) *gocqlSession {
	return &gocqlSession{session: session, stmts: newStmtCache()}
}

func (g *gocqlSession) writeRaw(table string, rows []insertRecord) error {
	if len(rows) == 0 {
		return nil
	}
	sql := rawInsertTemplate(table)
	g.stmts.prepare(sql)

	batch := g.session.NewBatch(gocql.UnloggedBatch)
	batch.Cons = gocql.Any
	for _, r := range rows {
		batch.Query(sql, r.ttl, []float64{r.metric}, r.rollup, r.period, r.path, r.time)
	}
	return g.session.ExecuteBatch(batch)
}

func (g *gocqlSession) writeRollup(rec insertRecord) error {
	sql := rollupInsertTemplate(rec.table)
	g.stmts.prepare(sql)

	q := g.session.Query(sql, rec.ttl, []float64{rec.metric}, rec.rollup, rec.period, rec.path, rec.time)
	q.Consistency(gocql.Any)
	return q.Exec()
}

func (g *gocqlSession) fetchRange(table string, paths []string, rollup, period int, from, to int64) ([]fetchRow, error) {
	sql := rangeFetchTemplate(table)
	g.stmts.prepare(sql)

	q := g.session.Query(sql, paths, rollup, period, from, to)
	q.Consistency(gocql.One)
	q.PageSize(0)

	iter := q.Iter()
	var rows []fetchRow
	var r fetchRow
	for iter.Scan(&r.path, &r.data, &r.time) {
		rows = append(rows, r)
		r = fetchRow{}
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return rows, nil
}

func (g *gocqlSession) fetchRollupSource(table string, path string, rollup, period int, from, to int64) ([]float64, error) {
	sql := rollupFetchTemplate(table)
	g.stmts.prepare(sql)

	q := g.session.Query(sql, path, rollup, period, from, to)
	q.Consistency(gocql.LocalOne)

	iter := q.Iter()
	var data []float64
	var all []float64
	for iter.Scan(&data) {
		all = append(all, data...)
		data = nil
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return all, nil
}
