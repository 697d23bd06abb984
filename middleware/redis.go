package middleware

import "gopkg.in/redis.v3"

// RedisClient returns a connection to the path-index collaborator's
// Redis backend.
func RedisClient(addr string, pwd string, db int64) (*redis.Client, error) {
	rc := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: pwd,
		DB:       db,
	})
	if err := rc.Ping().Err(); err != nil {
		return nil, err
	}
	return rc, nil
}
