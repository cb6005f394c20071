package train

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"qubic/internal/engine"
	"qubic/internal/qubic"
)

type Config struct {
	// LearningRateDecay sets lr = 1/trial^decay; 1 gives a running average.
	LearningRateDecay float64 `json:"learning_rate_decay"`
	// The learner exploits with probability slope*(trial/total) - offset.
	ExploitationOffset float64 `json:"exploitation_offset"`
	ExploitationSlope  float64 `json:"exploitation_slope"`
	LearnerDepth       int     `json:"learner_depth"`  // 学习方利用时的搜索深度
	OpponentDepth      int     `json:"opponent_depth"` // 0 表示对手随机走
	// Seed 0 seeds from the clock.
	Seed int64 `json:"seed"`
	// Checkpoints lists completed-trial counts that fire OnCheckpoint.
	Checkpoints []int `json:"checkpoints"`
}

func DefaultConfig() Config {
	return Config{
		LearningRateDecay:  1,
		ExploitationOffset: 0.5,
		ExploitationSlope:  1,
		LearnerDepth:       1,
		OpponentDepth:      0,
	}
}

// TrialResult describes one finished self-play game.
type TrialResult struct {
	Trial        int // 1-based
	Total        int
	Learner      qubic.Player
	Outcome      qubic.Outcome
	Moves        []qubic.Cell // 按顺序的落子
	LearningRate float64
	Exploitation float64
	Weights      [qubic.NumSquareTypes]float64 // after the update
}

// Trainer adapts a UtilityFunction by playing a learner against an opponent
// and crediting the winner's square types after every game.
type Trainer struct {
	cfg      Config
	utility  *engine.UtilityFunction // 双方共用，每局结束后更新
	rng      *rand.Rand              // 选边、探索和两个引擎共用一个随机源，保证可复现
	learner  *engine.Engine
	opponent *engine.Engine

	OnTrial      func(TrialResult)
	OnCheckpoint func(trial int, u *engine.UtilityFunction)
}

func New(u *engine.UtilityFunction, cfg Config) *Trainer {
	if u == nil {
		u = engine.NewUtilityFunction()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	return &Trainer{
		cfg:      cfg,
		utility:  u,
		rng:      rng,
		learner:  engine.NewEngine(u, rng),
		opponent: engine.NewEngine(u, rng),
	}
}

func (t *Trainer) Utility() *engine.UtilityFunction { return t.utility }

// LearningRate for the 1-based trial.
func (t *Trainer) LearningRate(trial int) float64 {
	return 1 / math.Pow(float64(trial), t.cfg.LearningRateDecay)
}

// Exploitation is the probability that the learner searches instead of
// playing at random. Values outside [0,1] behave as clamped.
func (t *Trainer) Exploitation(trial, total int) float64 {
	return t.cfg.ExploitationSlope*float64(trial)/float64(total) - t.cfg.ExploitationOffset
}

// RunTrials plays n games and updates the weights once per game. The
// context is only checked between games.
func (t *Trainer) RunTrials(ctx context.Context, n int) error {
	if n < 0 {
		return errors.Wrapf(qubic.ErrInvalidArgument, "trial count %d", n)
	}
	// 到达这些局数时回调一次权重快照
	checkpoints := make(map[int]bool, len(t.cfg.Checkpoints))
	for _, c := range t.cfg.Checkpoints {
		checkpoints[c] = true
	}
	if checkpoints[0] {
		t.checkpoint(0)
	}
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "stopped after %d of %d trials", i-1, n)
		}
		res, err := t.PlayTrial(i, n)
		if err != nil {
			return err
		}
		if t.OnTrial != nil {
			t.OnTrial(res)
		}
		if checkpoints[i] {
			t.checkpoint(i)
		}
	}
	return nil
}

// RunCheckpointed plays n3 games, reporting the weights after n1 and n2
// games and at the end.
func (t *Trainer) RunCheckpointed(ctx context.Context, n1, n2, n3 int) error {
	t.cfg.Checkpoints = []int{n1, n2, n3}
	return t.RunTrials(ctx, n3)
}

func (t *Trainer) checkpoint(trial int) {
	log.Debug().Int("trial", trial).Str("weights", t.utility.String()).Msg("checkpoint")
	if t.OnCheckpoint != nil {
		t.OnCheckpoint(trial, t.utility.Clone())
	}
}

// PlayTrial plays one game for the 1-based trial out of total and applies
// the update. trial must lie in [1, total].
func (t *Trainer) PlayTrial(trial, total int) (TrialResult, error) {
	// trial 从 1 开始，否则学习率为 +Inf
	if trial < 1 || total < trial {
		return TrialResult{}, errors.Wrapf(qubic.ErrInvalidArgument, "trial %d of %d", trial, total)
	}
	lr := t.LearningRate(trial)
	exploit := t.Exploitation(trial, total)
	// 随机决定学习方执先还是执后
	learner := qubic.First
	if t.rng.Float64() < 0.5 {
		learner = qubic.Second
	}

	pos := qubic.NewPosition()
	moves := make([]qubic.Cell, 0, qubic.NumCells)
	for !pos.Winner().Decided() {
		var next qubic.Position
		var err error
		if pos.ToMove() == learner {
			// 探索时随机走，利用时搜索
			depth := 0
			if t.rng.Float64() < exploit {
				depth = t.cfg.LearnerDepth
			}
			next, err = t.learner.BestMove(pos, depth)
		} else {
			next, err = t.opponent.BestMove(pos, t.cfg.OpponentDepth)
		}
		if err != nil {
			return TrialResult{}, errors.Wrapf(err, "trial %d ply %d", trial, pos.Ply())
		}
		cell, _ := qubic.MoveBetween(pos, next)
		moves = append(moves, cell)
		pos = next
	}

	// 终局才更新一次权重
	Update(t.utility, pos, lr)
	res := TrialResult{
		Trial:        trial,
		Total:        total,
		Learner:      learner,
		Outcome:      pos.Winner(),
		Moves:        moves,
		LearningRate: lr,
		Exploitation: exploit,
		Weights:      t.utility.Weights(),
	}
	log.Debug().
		Int("trial", trial).
		Str("learner", learner.String()).
		Str("outcome", res.Outcome.String()).
		Int("plies", len(moves)).
		Float64("lr", lr).
		Msg("trial")
	return res, nil
}
