package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepworks/prepworks-backend/internal/config"
	"github.com/prepworks/prepworks-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	ResultBatchSize    = 50
	ResultBatchTimeout = 2 * time.Second
	ResultPollTimeout  = 1 * time.Second
)

// ResultWorker consumes persist_results_queue and writes final attempt
// results to PostgreSQL in batches.
type ResultWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewResultWorker creates a new ResultWorker.
func NewResultWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *ResultWorker {
	return &ResultWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "result_worker").Logger(),
	}
}

type resultPayload struct {
	AttemptID string       `json:"attempt_id"`
	StudentID int          `json:"student_id"`
	Result    model.Result `json:"result"`
}

// Start begins the batching worker loop. Call in a goroutine.
func (w *ResultWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	batch := make([]*resultPayload, 0, ResultBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= ResultBatchSize || time.Since(lastFlush) >= ResultBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, ResultPollTimeout, config.WorkerKey.PersistResultsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var p resultPayload
			if err := json.Unmarshal([]byte(item[1]), &p); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &p)
		}
	}
}

func (w *ResultWorker) flushSafe(ctx context.Context, batch []*resultPayload) {
	if len(batch) == 0 {
		return
	}

	if err := w.bulkUpdateResults(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("bulk result update failed, using fallback")

		for _, p := range batch {
			if err := w.persistSingle(ctx, p); err != nil {
				w.log.Error().Err(err).
					Str("attempt_id", p.AttemptID).
					Msg("persistSingle failed, requeueing")
				raw, _ := json.Marshal(p)
				w.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, raw)
			}
		}
		return
	}

	// Results are durable, the Redis answer buffers can go.
	w.bulkClearAnswerBuffers(ctx, batch)
}

// bulkUpdateResults updates the whole batch in one statement via UNNEST.
func (w *ResultWorker) bulkUpdateResults(ctx context.Context, batch []*resultPayload) error {
	n := len(batch)

	attemptIDs := make([]uuid.UUID, 0, n)
	scores := make([]int, 0, n)
	corrects := make([]int, 0, n)
	totals := make([]int, 0, n)
	breakdowns := make([][]byte, 0, n)
	finishedAts := make([]time.Time, 0, n)

	now := time.Now()
	for _, p := range batch {
		aID, err := uuid.Parse(p.AttemptID)
		if err != nil {
			return err
		}

		var breakdown []byte
		if p.Result.PerSubject != nil {
			breakdown, _ = json.Marshal(p.Result.PerSubject)
		}

		attemptIDs = append(attemptIDs, aID)
		scores = append(scores, p.Result.Score)
		corrects = append(corrects, p.Result.CorrectCount)
		totals = append(totals, p.Result.ScorableCount)
		breakdowns = append(breakdowns, breakdown)
		finishedAts = append(finishedAts, now)
	}

	query := `
		UPDATE exam_attempts AS a
		SET status = 'SUBMITTED',
		    score = t.score,
		    correct_count = t.correct_count,
		    total_count = t.total_count,
		    breakdown = t.breakdown,
		    finished_at = t.finished_at
		FROM (
			SELECT
				u.attempt_id,
				u.score,
				u.correct_count,
				u.total_count,
				u.breakdown,
				u.finished_at
			FROM UNNEST(
				$1::uuid[],
				$2::int[],
				$3::int[],
				$4::int[],
				$5::jsonb[],
				$6::timestamptz[]
			) AS u (attempt_id, score, correct_count, total_count, breakdown, finished_at)
		) AS t
		WHERE a.id = t.attempt_id
	`

	_, err := w.pool.Exec(ctx, query, attemptIDs, scores, corrects, totals, breakdowns, finishedAts)
	return err
}

func (w *ResultWorker) bulkClearAnswerBuffers(ctx context.Context, batch []*resultPayload) {
	pipe := w.rdb.Pipeline()

	for _, p := range batch {
		pipe.Del(ctx, config.CacheKey.AttemptAnswersKey(p.AttemptID))
	}

	_, _ = pipe.Exec(ctx)
}

// persistSingle is the per-row fallback when the bulk path fails.
func (w *ResultWorker) persistSingle(ctx context.Context, p *resultPayload) error {
	aID, err := uuid.Parse(p.AttemptID)
	if err != nil {
		return err
	}

	var breakdown []byte
	if p.Result.PerSubject != nil {
		breakdown, _ = json.Marshal(p.Result.PerSubject)
	}

	_, err = w.pool.Exec(ctx,
		`UPDATE exam_attempts
		 SET status = 'SUBMITTED',
		     score = $1,
		     correct_count = $2,
		     total_count = $3,
		     breakdown = $4,
		     finished_at = NOW()
		 WHERE id = $5`,
		p.Result.Score, p.Result.CorrectCount, p.Result.ScorableCount, breakdown, aID,
	)
	return err
}
