package scrollspy

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFakeRegions registers one unmounted ref per id.
func newFakeRegions(t *testing.T, ids ...string) (*Regions, map[string]*fakeElement) {
	t.Helper()
	regions := NewRegions()
	els := make(map[string]*fakeElement, len(ids))
	for _, id := range ids {
		require.NoError(t, regions.Add(id, NewRef()))
		els[id] = &fakeElement{attached: true}
	}
	return regions, els
}

func mountFake(regions *Regions, els map[string]*fakeElement) {
	for id, el := range els {
		regions.Ref(id).Set(el)
	}
}

// startReady returns a session whose observer is set up, with fallback
// disabled unless opts enables it.
func startReady(t *testing.T, ids []string, opts ...Option) (*Session, *fakeHost, map[string]*fakeElement) {
	t.Helper()
	host := newFakeHost(80, 20)
	regions, els := newFakeRegions(t, ids...)
	mountFake(regions, els)

	opts = append([]Option{WithLogger(nopLogger{}), WithInitialFallback(false)}, opts...)
	s, err := Track(host, regions, opts...)
	require.NoError(t, err)
	t.Cleanup(s.Stop)

	host.frame()
	require.Len(t, host.observers, 1)
	return s, host, els
}

func TestTrack_Errors(t *testing.T) {
	type tc struct {
		host Host
		opts []Option
	}

	tests := map[string]tc{
		"nil host": {
			host: nil,
		},
		"malformed root margin": {
			host: newFakeHost(80, 20),
			opts: []Option{WithRootMargin("-40 0px")},
		},
		"threshold above one": {
			host: newFakeHost(80, 20),
			opts: []Option{WithThresholds(0, 1.5)},
		},
		"no thresholds": {
			host: newFakeHost(80, 20),
			opts: []Option{WithThresholds()},
		},
		"nil logger": {
			host: newFakeHost(80, 20),
			opts: []Option{WithLogger(nil)},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s, err := Track(tt.host, NewRegions(), tt.opts...)
			assert.Error(t, err)
			assert.Nil(t, s)
		})
	}
}

func TestTrack_DefaultObserverConfig(t *testing.T) {
	_, host, _ := startReady(t, []string{"home"})

	cfg := host.observerCfgs[0]
	assert.Equal(t, DefaultBand(), cfg.Band)
	require.Len(t, cfg.Thresholds, 11)
	assert.Equal(t, 0.0, cfg.Thresholds[0])
	assert.InDelta(t, 0.5, cfg.Thresholds[5], 1e-9)
	assert.Equal(t, 1.0, cfg.Thresholds[10])
}

func TestSession_DefersObserverOneFrame(t *testing.T) {
	host := newFakeHost(80, 20)
	regions, els := newFakeRegions(t, "home", "about")
	mountFake(regions, els)

	s, err := Track(host, regions, WithLogger(nopLogger{}))
	require.NoError(t, err)
	defer s.Stop()

	assert.True(t, s.Initialized())
	assert.Empty(t, host.observers, "observer must wait for the next frame")
	assert.Empty(t, host.mountFns, "mounted regions need no mount watcher")

	host.frame()
	require.Len(t, host.observers, 1)
	assert.Len(t, host.observers[0].observed, 2)
	assert.Equal(t, 1, host.pendingFrames(), "fallback frame should be pending")
}

func TestSession_WaitsForMounts(t *testing.T) {
	host := newFakeHost(80, 20)
	regions, els := newFakeRegions(t, "home", "about")

	s, err := Track(host, regions, WithLogger(nopLogger{}))
	require.NoError(t, err)
	defer s.Stop()

	require.Len(t, host.mountFns, 1)
	assert.False(t, s.Initialized())

	regions.Ref("home").Set(els["home"])
	host.mutate()
	assert.False(t, s.Initialized(), "one region still missing")
	assert.Zero(t, host.pendingFrames())

	regions.Ref("about").Set(els["about"])
	host.mutate()
	assert.True(t, s.Initialized())
	assert.Equal(t, 1, host.mountCancels, "mount watcher released once ready")
	assert.Equal(t, 1, host.pendingFrames())
}

func TestSession_InitializesOnce(t *testing.T) {
	host := newFakeHost(80, 20)
	regions, els := newFakeRegions(t, "home")

	s, err := Track(host, regions, WithLogger(nopLogger{}), WithInitialFallback(false))
	require.NoError(t, err)
	defer s.Stop()

	mountFake(regions, els)
	// A second watcher callback before the first initialization finished
	// must not schedule a second setup.
	fn := host.mountFns[0]
	fn()
	fn()
	s.onMutation()
	s.initialize()

	assert.Equal(t, 1, host.pendingFrames())
	host.frame()
	assert.Len(t, host.observers, 1)
}

func TestSession_StopBeforeMount(t *testing.T) {
	host := newFakeHost(80, 20)
	regions, els := newFakeRegions(t, "home", "about")

	s, err := Track(host, regions, WithLogger(nopLogger{}))
	require.NoError(t, err)

	s.Stop()
	assert.Equal(t, 1, host.mountCancels)

	mountFake(regions, els)
	assert.NotPanics(t, host.mutate)
	host.frame()

	assert.Empty(t, host.observers, "no observer may be created after Stop")
	assert.False(t, s.Initialized())
	assert.Empty(t, s.ActiveID())

	assert.NotPanics(t, s.Stop)
	assert.Equal(t, 1, host.mountCancels, "second Stop is a no-op")
}

func TestSession_StopCancelsPendingFrames(t *testing.T) {
	type tc struct {
		framesBeforeStop int
		wantObserver     bool
	}

	tests := map[string]tc{
		"observer setup pending": {
			framesBeforeStop: 0,
			wantObserver:     false,
		},
		"fallback pending": {
			framesBeforeStop: 1,
			wantObserver:     true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			host := newFakeHost(80, 20)
			regions, els := newFakeRegions(t, "home")
			mountFake(regions, els)
			els["home"].rect = NewRect(0, 0, 80, 20)

			s, err := Track(host, regions, WithLogger(nopLogger{}))
			require.NoError(t, err)
			for range tt.framesBeforeStop {
				host.frame()
			}

			s.Stop()
			require.Len(t, host.cancelled, 1)
			assert.Zero(t, host.pendingFrames())

			host.frame()
			assert.Empty(t, s.ActiveID())
			if tt.wantObserver {
				require.Len(t, host.observers, 1)
				assert.True(t, host.observers[0].disconnected)
				assert.Empty(t, host.observers[0].observed)
			} else {
				assert.Empty(t, host.observers)
			}
		})
	}
}

func TestSession_Evaluate(t *testing.T) {
	type tc struct {
		batches [][]Observation
		want    string
	}

	a, b, c := &fakeElement{attached: true}, &fakeElement{attached: true}, &fakeElement{attached: true}
	stranger := &fakeElement{attached: true}

	tests := map[string]tc{
		"single visible region wins": {
			batches: [][]Observation{{gone(a), seen(b, 8, 4), gone(c)}},
			want:    "b",
		},
		"largest area wins": {
			batches: [][]Observation{{seen(a, 8, 1), seen(b, 9, 2), seen(c, 11, 1)}},
			want:    "b",
		},
		"tie goes to earlier region": {
			batches: [][]Observation{{seen(c, 10, 2), seen(b, 8, 2)}},
			want:    "b",
		},
		"unknown targets are ignored": {
			batches: [][]Observation{{seen(stranger, 8, 4), seen(c, 8, 1)}},
			want:    "c",
		},
		"non-intersecting only leaves none": {
			batches: [][]Observation{{gone(a), gone(b)}},
			want:    "",
		},
		"latest area of unchanged regions still counts": {
			batches: [][]Observation{
				{seen(a, 8, 3), seen(b, 11, 1)},
				// Only b reports; a keeps its larger area.
				{seen(b, 10, 2)},
			},
			want: "a",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			host := newFakeHost(80, 20)
			regions := NewRegions()
			for _, pair := range []struct {
				id string
				el *fakeElement
			}{{"a", a}, {"b", b}, {"c", c}} {
				ref := NewRef()
				ref.Set(pair.el)
				require.NoError(t, regions.Add(pair.id, ref))
			}

			s, err := Track(host, regions, WithLogger(nopLogger{}), WithInitialFallback(false))
			require.NoError(t, err)
			defer s.Stop()
			host.frame()

			for _, batch := range tt.batches {
				host.observers[0].send(batch...)
			}
			assert.Equal(t, tt.want, s.ActiveID())
		})
	}
}

func TestSession_ClipsToRootBounds(t *testing.T) {
	s, host, els := startReady(t, []string{"home", "about"})

	root := NewRect(0, 8, 80, 4)
	host.observers[0].send(
		// Host reported more than the band; only 1 row is inside it.
		Observation{Target: els["home"], Intersection: NewRect(0, 0, 80, 9), RootBounds: root, Intersecting: true},
		Observation{Target: els["about"], Intersection: NewRect(0, 9, 80, 3), RootBounds: root, Intersecting: true},
	)
	assert.Equal(t, "about", s.ActiveID())
}

func TestSession_NoRedundantEmission(t *testing.T) {
	s, host, els := startReady(t, []string{"home", "about"})

	changes := 0
	s.Active().Bind(func(string) { changes++ })

	obs := host.observers[0]
	obs.send(seen(els["home"], 8, 4))
	obs.send(seen(els["home"], 8, 3))
	obs.send(seen(els["home"], 8, 4), gone(els["about"]))
	assert.Equal(t, 1, changes)

	obs.send(gone(els["home"]), seen(els["about"], 8, 4))
	obs.send(seen(els["about"], 9, 3))
	assert.Equal(t, 2, changes)
	assert.Equal(t, "about", s.ActiveID())
}

func TestSession_StickyActive(t *testing.T) {
	s, host, els := startReady(t, []string{"home", "about"})

	obs := host.observers[0]
	obs.send(seen(els["about"], 8, 4))
	require.Equal(t, "about", s.ActiveID())

	obs.send(gone(els["home"]), gone(els["about"]))
	assert.Equal(t, "about", s.ActiveID(), "active id never reverts to none")
}

func TestSession_TieBreakIsStable(t *testing.T) {
	s, host, els := startReady(t, []string{"home", "about"})

	obs := host.observers[0]
	for range 10 {
		obs.send(seen(els["about"], 10, 2), seen(els["home"], 8, 2))
		assert.Equal(t, "home", s.ActiveID())
	}
}

func TestSession_IgnoresDetachedTargets(t *testing.T) {
	s, host, els := startReady(t, []string{"home", "about"})

	obs := host.observers[0]
	obs.send(seen(els["home"], 8, 1), seen(els["about"], 9, 3))
	require.Equal(t, "about", s.ActiveID())

	els["about"].attached = false
	obs.send(seen(els["about"], 8, 4), seen(els["home"], 8, 2))
	assert.Equal(t, "home", s.ActiveID())
}

func TestSession_IgnoresCallbacksAfterStop(t *testing.T) {
	s, host, els := startReady(t, []string{"home"})

	obs := host.observers[0]
	s.Stop()
	assert.True(t, obs.disconnected)
	assert.Equal(t, 1, obs.unobserved)

	assert.NotPanics(t, func() { obs.send(seen(els["home"], 8, 4)) })
	assert.Empty(t, s.ActiveID())
}

func TestSession_StopToleratesUnmountedRegions(t *testing.T) {
	s, host, els := startReady(t, []string{"home", "about"})

	els["home"].attached = false
	els["about"].attached = false
	assert.NotPanics(t, s.Stop)
	assert.True(t, host.observers[0].disconnected)
}

func TestSession_EmptyRegionsNeverActivate(t *testing.T) {
	host := newFakeHost(80, 20)
	s, err := Track(host, NewRegions(), WithLogger(nopLogger{}))
	require.NoError(t, err)
	defer s.Stop()

	host.frame()
	host.frame()
	require.Len(t, host.observers, 1)
	host.observers[0].send()
	assert.Empty(t, s.ActiveID())
}

func TestSession_Fallback(t *testing.T) {
	type tc struct {
		rects map[string]Rect
		want  string
	}

	tests := map[string]tc{
		"picks region covering most of the viewport": {
			rects: map[string]Rect{
				"home":  NewRect(0, -15, 80, 20),
				"about": NewRect(0, 5, 80, 20),
			},
			want: "about",
		},
		"clamps oversize regions to the viewport": {
			rects: map[string]Rect{
				"home":  NewRect(0, -100, 80, 300),
				"about": NewRect(0, 200, 80, 20),
			},
			want: "home",
		},
		"nothing on screen leaves none": {
			rects: map[string]Rect{
				"home":  NewRect(0, -40, 80, 20),
				"about": NewRect(0, 40, 80, 20),
			},
			want: "",
		},
		"offscreen horizontally counts as zero": {
			rects: map[string]Rect{
				"home":  NewRect(100, 0, 80, 20),
				"about": NewRect(0, 18, 80, 20),
			},
			want: "about",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			host := newFakeHost(80, 20)
			regions, els := newFakeRegions(t, "home", "about")
			for id, r := range tt.rects {
				els[id].rect = r
			}
			mountFake(regions, els)

			s, err := Track(host, regions, WithLogger(nopLogger{}))
			require.NoError(t, err)
			defer s.Stop()

			host.frame()
			assert.Empty(t, s.ActiveID(), "fallback runs one frame after setup")
			host.frame()
			assert.Equal(t, tt.want, s.ActiveID())
		})
	}
}

func TestSession_FallbackDisabled(t *testing.T) {
	host := newFakeHost(80, 20)
	regions, els := newFakeRegions(t, "home")
	els["home"].rect = NewRect(0, 0, 80, 20)
	mountFake(regions, els)

	s, err := Track(host, regions, WithLogger(nopLogger{}), WithInitialFallback(false))
	require.NoError(t, err)
	defer s.Stop()

	host.frame()
	assert.Zero(t, host.pendingFrames())
	host.frame()
	assert.Empty(t, s.ActiveID())
}

func TestSession_IndependentSessions(t *testing.T) {
	host := newFakeHost(80, 20)
	regions, els := newFakeRegions(t, "home", "about")
	mountFake(regions, els)

	first, err := Track(host, regions, WithLogger(nopLogger{}), WithInitialFallback(false))
	require.NoError(t, err)
	second, err := Track(host, regions, WithLogger(nopLogger{}), WithInitialFallback(false))
	require.NoError(t, err)
	defer second.Stop()

	host.frame()
	require.Len(t, host.observers, 2)
	assert.NotEqual(t, first.ID(), second.ID())

	host.observers[0].send(seen(els["home"], 8, 4))
	host.observers[1].send(seen(els["about"], 8, 4))
	assert.Equal(t, "home", first.ActiveID())
	assert.Equal(t, "about", second.ActiveID())

	first.Stop()
	assert.True(t, host.observers[0].disconnected)
	assert.False(t, host.observers[1].disconnected)
}

func TestSession_ActiveIsReadOnly(t *testing.T) {
	s, host, els := startReady(t, []string{"home", "about"})

	_, settable := any(s.Active()).(interface{ Set(string) })
	assert.False(t, settable, "hosts cannot publish the active id")

	changes := 0
	s.Active().Bind(func(string) { changes++ })

	obs := host.observers[0]
	obs.send(seen(els["home"], 8, 4))
	require.Equal(t, "home", s.Active().Get())

	// home still wins; the published value and the session agree, so
	// nothing is re-emitted.
	obs.send(seen(els["home"], 8, 4), seen(els["about"], 11, 1))
	assert.Equal(t, "home", s.ActiveID())
	assert.Equal(t, 1, changes)
}

func TestSession_StopRacesWithCallbacks(t *testing.T) {
	s, host, els := startReady(t, []string{"home", "about"})
	obs := host.observers[0]

	var emitted atomic.Int64
	s.Active().Bind(func(string) { emitted.Add(1) })

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range 500 {
			if i%2 == 0 {
				obs.send(seen(els["home"], 8, 4), gone(els["about"]))
			} else {
				obs.send(gone(els["home"]), seen(els["about"], 8, 4))
			}
		}
	}()

	s.Stop()
	wg.Wait()

	after := s.ActiveID()
	count := emitted.Load()
	obs.send(gone(els["home"]), seen(els["about"], 8, 4))
	obs.send(seen(els["home"], 8, 4), gone(els["about"]))
	assert.Equal(t, after, s.ActiveID(), "no updates after Stop")
	assert.Equal(t, count, emitted.Load())
	assert.True(t, obs.disconnected)
}
