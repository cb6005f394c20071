package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"qubic/internal/qubic"
	"qubic/internal/train"
)

// EpisodeRow is one finished training game. Moves are cell indices in play
// order; the weights are the utility function right after the game's update.
type EpisodeRow struct {
	GameID       string  `parquet:"game_id"`
	Trial        int32   `parquet:"trial"`
	Total        int32   `parquet:"total"`
	Learner      string  `parquet:"learner,dict"`
	Outcome      string  `parquet:"outcome,dict"`
	Plies        int32   `parquet:"plies"`
	Moves        []int32 `parquet:"moves"`
	LearningRate float64 `parquet:"learning_rate"`
	Exploitation float64 `parquet:"exploitation"`

	WeightCenter float64 `parquet:"w_center"`
	WeightCorner float64 `parquet:"w_corner"`
	WeightEdge   float64 `parquet:"w_edge"`
	WeightFace   float64 `parquet:"w_face"`
}

// EpisodeFromTrial flattens a trial result under a fresh game id.
func EpisodeFromTrial(r train.TrialResult) EpisodeRow {
	return EpisodeRow{
		GameID:  uuid.NewString(),
		Trial:   int32(r.Trial),
		Total:   int32(r.Total),
		Learner: r.Learner.String(),
		Outcome: r.Outcome.String(),
		Plies:   int32(len(r.Moves)),
		Moves: lo.Map(r.Moves, func(c qubic.Cell, _ int) int32 {
			return int32(c)
		}),
		LearningRate: r.LearningRate,
		Exploitation: r.Exploitation,
		WeightCenter: r.Weights[qubic.Center],
		WeightCorner: r.Weights[qubic.Corner],
		WeightEdge:   r.Weights[qubic.Edge],
		WeightFace:   r.Weights[qubic.Face],
	}
}

// BatchWriter streams episodes into outDir/tmp and moves the finished file
// into outDir on Finalize, so readers never see a partial file.
type BatchWriter struct {
	outDir  string
	tmpPath string // 写入中的文件
	outPath string // Finalize 之后的最终位置

	file   *os.File
	writer *parquet.GenericWriter[EpisodeRow]

	rows int // 已写入的对局数
}

func NewBatchWriter(outDir string) (*BatchWriter, error) {
	if outDir == "" {
		return nil, errors.Wrap(qubic.ErrInvalidArgument, "archive dir is required")
	}
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		absOut = outDir
	}
	tmpDir := filepath.Join(absOut, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create tmp dir")
	}

	name := fmt.Sprintf("episodes_%d.parquet", time.Now().UnixNano())
	tmpPath := filepath.Join(tmpDir, name)
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "open tmp parquet")
	}

	w := parquet.NewGenericWriter[EpisodeRow](
		f,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
	)
	w.SetKeyValueMetadata("schema", "episode_row_v1")

	return &BatchWriter{
		outDir:  absOut,
		tmpPath: tmpPath,
		outPath: filepath.Join(absOut, name),
		file:    f,
		writer:  w,
	}, nil
}

func (b *BatchWriter) OutPath() string { return b.outPath }
func (b *BatchWriter) Rows() int       { return b.rows }

func (b *BatchWriter) Write(rows ...EpisodeRow) error {
	if b.writer == nil {
		return errors.Wrap(qubic.ErrInvalidState, "batch writer is closed")
	}
	if len(rows) == 0 {
		return nil
	}
	if _, err := b.writer.Write(rows); err != nil {
		return errors.Wrap(err, "write episodes")
	}
	b.rows += len(rows)
	return nil
}

// Finalize closes the file and renames it into place. With no rows the tmp
// file is removed and the returned path is empty. Calling it twice is a no-op.
func (b *BatchWriter) Finalize() (string, int, error) {
	if b.writer == nil && b.file == nil {
		return "", 0, nil
	}
	closeErr := b.writer.Close()
	b.writer = nil
	_ = b.file.Sync()
	fileErr := b.file.Close()
	b.file = nil
	if closeErr != nil {
		return "", 0, errors.Wrap(closeErr, "close parquet writer")
	}
	if fileErr != nil {
		return "", 0, errors.Wrap(fileErr, "close parquet file")
	}

	if b.rows == 0 {
		_ = os.Remove(b.tmpPath)
		return "", 0, nil
	}
	if err := os.Rename(b.tmpPath, b.outPath); err != nil {
		return "", 0, errors.Wrap(err, "rename parquet")
	}
	return b.outPath, b.rows, nil
}

// ReadEpisodes loads every row of an archive file.
func ReadEpisodes(path string) ([]EpisodeRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open archive")
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	reader := parquet.NewGenericReader[EpisodeRow](pf)
	defer reader.Close()

	out := make([]EpisodeRow, 0, reader.NumRows())
	buf := make([]EpisodeRow, 256)
	for {
		n, err := reader.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "read episodes")
		}
		if n == 0 {
			return out, nil
		}
	}
}
