// batch_runner.go - concurrent batch runs

package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"golang.org/x/sync/errgroup"
)

// BatchJob describes one isolated run: an image booted on one core of a
// fresh system and run for a cycle budget.
type BatchJob struct {
	Name     string
	Path     string
	Variant  JaguarVariant
	LoadAddr uint32
	Entry    uint32
	Cycles   int
}

// BatchResult holds the final state of one job.
type BatchResult struct {
	Job      BatchJob
	Elapsed  int
	Halted   bool
	GPU      JaguarState
	DSP      JaguarState
	HostIRQs uint64
}

const batchChunk = 1 << 16

// RunBatch runs jobs concurrently, at most limit at a time (0 = unlimited).
// Results are returned in job order. The first failing job cancels the rest.
func RunBatch(ctx context.Context, jobs []BatchJob, limit int) ([]BatchResult, error) {
	results := make([]BatchResult, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, job := range jobs {
		g.Go(func() error {
			res, err := runBatchJob(ctx, job)
			if err != nil {
				return fmt.Errorf("batch job %s: %w", job.Name, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runBatchJob(ctx context.Context, job BatchJob) (BatchResult, error) {
	sys := NewJaguarSystem()
	if _, err := sys.Bus().LoadImage(job.Path, job.LoadAddr); err != nil {
		return BatchResult{}, err
	}
	cpu := sys.CPU(job.Variant)
	cpu.CtrlWrite(JAG_PC, job.Entry, 0xFFFFFFFF)
	cpu.CtrlWrite(JAG_CTRL, JAG_CTRL_GO, JAG_CTRL_GO)

	res := BatchResult{Job: job}
	for res.Elapsed < job.Cycles {
		if err := ctx.Err(); err != nil {
			return BatchResult{}, err
		}
		n, _ := sys.RunCycles(min(batchChunk, job.Cycles-res.Elapsed))
		res.Elapsed += n
		if n == 0 {
			break
		}
	}

	res.Halted = sys.GPU.Halted() && sys.DSP.Halted()
	res.GPU = sys.GPU.SaveState()
	res.DSP = sys.DSP.SaveState()
	res.HostIRQs = sys.HostIRQs()
	return res, nil
}

// WriteBatchReport prints one line per result.
func WriteBatchReport(w io.Writer, results []BatchResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "JOB\tCORE\tCYCLES\tHALTED\tPC\tFLAGS\tR0\tR1\tHOSTIRQ")
	for _, r := range results {
		st := r.GPU
		if r.Job.Variant == JaguarDSP {
			st = r.DSP
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%t\t$%06X\t$%05X\t$%08X\t$%08X\t%d\n",
			r.Job.Name, r.Job.Variant, r.Elapsed, r.Halted,
			st.Ctrl[JAG_PC], st.Ctrl[JAG_FLAGS], st.R[0], st.R[1], r.HostIRQs)
	}
	return tw.Flush()
}
