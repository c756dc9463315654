package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/querymorph/querymorph/internal/db"
)

// incrBelowScript increments a counter only while it is below the ceiling.
// Runs server-side so concurrent callers cannot overshoot and a rejected
// call leaves the key untouched. Returns {count, applied}.
var incrBelowScript = rueidis.NewLuaScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current >= tonumber(ARGV[1]) then
  return {current, 0}
end
return {redis.call('INCR', KEYS[1]), 1}
`)

// IncrBelow atomically increments key while its value is below ceiling.
func (s *Store) IncrBelow(ctx context.Context, key string, ceiling int64) (int64, bool, error) {
	res := incrBelowScript.Exec(ctx, s.client, []string{key}, []string{strconv.FormatInt(ceiling, 10)})
	vals, err := res.AsIntSlice()
	if err != nil {
		return 0, false, &db.Error{Op: db.OpEval, Err: err}
	}
	if len(vals) != 2 {
		return 0, false, &db.Error{Op: db.OpEval, Err: fmt.Errorf("unexpected script reply length %d", len(vals))}
	}
	return vals[0], vals[1] == 1, nil
}
