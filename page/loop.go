package page

import (
	"slices"

	scrollspy "github.com/grindlemire/go-scrollspy"
)

// Tick runs one loop turn: queued tasks (mount notifications, observer
// batches), then the frame callbacks that were pending when the frame
// phase began, then any tasks those callbacks queued. Frames requested
// by frame callbacks run on the next Tick.
func (p *Page) Tick() {
	p.drainTasks()

	p.running = p.frames
	p.frames = nil
	for len(p.running) > 0 {
		f := p.running[0]
		p.running = p.running[1:]
		f.fn()
	}

	p.drainTasks()
}

// Pending reports the number of queued tasks and frame callbacks.
func (p *Page) Pending() (tasks, frames int) {
	return len(p.tasks), len(p.frames)
}

func (p *Page) drainTasks() {
	for len(p.tasks) > 0 {
		task := p.tasks[0]
		p.tasks = p.tasks[1:]
		task()
	}
}

func (p *Page) queue(task func()) {
	p.tasks = append(p.tasks, task)
}

// RequestFrame schedules fn for the next Tick's frame phase.
func (p *Page) RequestFrame(fn func()) scrollspy.FrameID {
	p.nextFrame++
	id := p.nextFrame
	p.frames = append(p.frames, frame{id: id, fn: fn})
	return id
}

// CancelFrame removes a pending frame callback, including one still
// waiting its turn in the current frame phase. Unknown or already-run
// ids are ignored.
func (p *Page) CancelFrame(id scrollspy.FrameID) {
	match := func(f frame) bool { return f.id == id }
	p.frames = slices.DeleteFunc(p.frames, match)
	p.running = slices.DeleteFunc(p.running, match)
}

// WatchMounts calls fn after each batch of mounts or unmounts.
func (p *Page) WatchMounts(fn func()) (cancel func()) {
	p.nextWatcher++
	id := p.nextWatcher
	p.watchers[id] = fn
	return func() {
		delete(p.watchers, id)
	}
}

// Watching reports the number of active mount watchers.
func (p *Page) Watching() int {
	return len(p.watchers)
}

// queueMutation coalesces mutations into one notification per Tick.
func (p *Page) queueMutation() {
	if p.mutationQueued {
		return
	}
	p.mutationQueued = true
	p.queue(func() {
		p.mutationQueued = false
		for id := 1; id <= p.nextWatcher; id++ {
			if fn, ok := p.watchers[id]; ok {
				fn()
			}
		}
	})
}
