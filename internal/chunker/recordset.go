package chunker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/vertti/bin2fq/internal/encoder"
)

// DefaultBlockSize is the default number of chunks per decoding job.
const DefaultBlockSize = 4096

// Options configures how a RecordSet is built.
type Options struct {
	Workers   int // Parallel decoding workers (default: 1, negative: NumCPU)
	BlockSize int // Chunks per decoding job (default: 4096)
}

// RecordSet is the decoded content of a whole input, in input order.
type RecordSet struct {
	Records   []Record
	Remainder int // Length of the final short record, 0 if none
}

// Len returns the number of records.
func (s *RecordSet) Len() int {
	return len(s.Records)
}

// Bytes returns the number of input bytes the set was decoded from.
func (s *RecordSet) Bytes() int {
	n := 0
	for _, rec := range s.Records {
		n += rec.Len()
	}
	return n
}

// decodeJob is a block of raw chunks to be decoded.
type decodeJob struct {
	seqNum int
	chunks [][]byte
}

// decodeResult is a decoded block.
type decodeResult struct {
	seqNum  int
	records []Record
}

// ReadAll reads r to the end and decodes it into a RecordSet.
func ReadAll(r io.Reader, chunkSize int, opts *Options) (*RecordSet, error) {
	if opts == nil {
		opts = &Options{}
	}
	workers := opts.Workers
	if workers == 0 {
		workers = 1
	}
	if workers < 0 {
		workers = runtime.NumCPU()
	}
	blockSize := opts.BlockSize
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}

	cr, err := NewReader(r, chunkSize)
	if err != nil {
		return nil, err
	}

	// Single worker path (simpler, no goroutine overhead)
	if workers == 1 {
		return readAllSequential(cr)
	}
	return readAllParallel(cr, workers, blockSize)
}

func readAllSequential(cr *Reader) (*RecordSet, error) {
	set := &RecordSet{}
	for {
		rec, err := cr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		set.Records = append(set.Records, rec)
	}
	set.Remainder = cr.Remainder()
	return set, nil
}

func readAllParallel(cr *Reader, workers, blockSize int) (*RecordSet, error) {
	jobs := make(chan decodeJob, workers*2)
	results := make(chan decodeResult, workers*2)

	g, ctx := errgroup.WithContext(context.Background())

	for range workers {
		g.Go(func() error {
			return runDecodeWorker(ctx, jobs, results)
		})
	}

	// Producer: copy chunks out of the reader's buffer and dispatch in blocks
	g.Go(func() error {
		defer close(jobs)
		return produceDecodeJobs(ctx, cr, jobs, blockSize)
	})

	// Collector: reassemble blocks in input order
	set := &RecordSet{}
	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		set.Records = collectResults(results)
	}()

	workerErr := g.Wait()
	close(results)
	<-collectorDone

	if workerErr != nil {
		return nil, workerErr
	}
	set.Remainder = cr.Remainder()
	return set, nil
}

func runDecodeWorker(ctx context.Context, jobs <-chan decodeJob, results chan<- decodeResult) error {
	for job := range jobs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		records := make([]Record, len(job.chunks))
		for i, chunk := range job.chunks {
			seq, qual := encoder.DecodeChunk(chunk)
			records[i] = Record{Sequence: seq, Quality: qual}
		}
		results <- decodeResult{seqNum: job.seqNum, records: records}
	}
	return nil
}

func produceDecodeJobs(ctx context.Context, cr *Reader, jobs chan<- decodeJob, blockSize int) error {
	seqNum := 0
	block := make([][]byte, 0, blockSize)

	send := func() error {
		select {
		case jobs <- decodeJob{seqNum: seqNum, chunks: block}:
			seqNum++
			block = make([][]byte, 0, blockSize)
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	for {
		chunk, err := cr.ReadChunk()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("producing decode jobs: %w", err)
		}

		owned := make([]byte, len(chunk))
		copy(owned, chunk)
		block = append(block, owned)

		if len(block) == blockSize {
			if err := send(); err != nil {
				return err
			}
		}
	}

	if len(block) > 0 {
		return send()
	}
	return nil
}

func collectResults(results <-chan decodeResult) []Record {
	pending := make(map[int][]Record)
	nextSeqNum := 0
	var records []Record

	for result := range results {
		pending[result.seqNum] = result.records

		// Append all sequential results available
		for {
			block, ok := pending[nextSeqNum]
			if !ok {
				break
			}
			records = append(records, block...)
			delete(pending, nextSeqNum)
			nextSeqNum++
		}
	}

	return records
}
