package db

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"habittracker/pkg/metrics"
)

type queryStartKey struct{}
type querySQLKey struct{}

// SlowQueryTracer 慢查询监控 Tracer
type SlowQueryTracer struct {
	logger        *zap.Logger
	slowThreshold time.Duration
}

// NewSlowQueryTracer 创建慢查询 Tracer，阈值为 0 时使用 100ms
func NewSlowQueryTracer(logger *zap.Logger, slowThreshold time.Duration) *SlowQueryTracer {
	if slowThreshold == 0 {
		slowThreshold = 100 * time.Millisecond
	}
	return &SlowQueryTracer{
		logger:        logger,
		slowThreshold: slowThreshold,
	}
}

func (t *SlowQueryTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	ctx = context.WithValue(ctx, queryStartKey{}, time.Now())
	ctx = context.WithValue(ctx, querySQLKey{}, data.SQL)
	return ctx
}

func (t *SlowQueryTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	startTime, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}

	duration := time.Since(startTime)

	// pgx v5 的 TraceQueryEndData 不包含 SQL，从 context 取
	sql, _ := ctx.Value(querySQLKey{}).(string)

	operation, table := classifyQuery(sql)
	metrics.RecordDBQueryDuration(operation, table, duration)

	if duration <= t.slowThreshold {
		return
	}

	if sql == "" {
		sql = "unknown"
	}
	if len(sql) > 200 {
		sql = sql[:200] + "..."
	}

	t.logger.Warn("Slow query detected",
		zap.String("sql", sql),
		zap.Duration("duration", duration),
		zap.Duration("threshold", t.slowThreshold),
	)
}

// classifyQuery 从 SQL 文本粗提取操作类型和目标表，作为指标标签
func classifyQuery(sql string) (operation, table string) {
	fields := strings.Fields(strings.ToLower(sql))
	if len(fields) == 0 {
		return "unknown", "unknown"
	}

	operation = fields[0]
	table = "unknown"
	for i, f := range fields {
		switch f {
		case "from", "into", "update", "table":
			if f == "update" && i != 0 {
				continue
			}
			if i+1 < len(fields) {
				table = strings.Trim(fields[i+1], `"(),`)
				return operation, table
			}
		}
	}
	return operation, table
}
