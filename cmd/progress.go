package cmd

import (
	"treesync/internal/queue"
	"treesync/internal/syncer"

	"github.com/cheggaaa/pb/v3"
)

const progressTemplate pb.ProgressBarTemplate = `{{string . "prefix"}}{{counters . }} {{bar . }} {{percent . }} {{etime . }}`

// progress tracks a pass whose total grows as folders are listed.
type progress struct {
	bar    *pb.ProgressBar
	runner *syncer.Runner
}

func newProgress() *progress {
	bar := progressTemplate.New(0)
	bar.Set("prefix", "tasks ")
	return &progress{bar: bar}
}

func (p *progress) Record(queue.Result) {
	if p.runner != nil {
		if stats, ok := p.runner.Current(); ok {
			p.bar.SetTotal(int64(stats.Queued))
		}
	}
	p.bar.Increment()
}

func (p *progress) Start() {
	p.bar.Start()
}

func (p *progress) Finish() {
	p.bar.Finish()
}
