package simulation

import (
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/pmove/game"
	"github.com/oomph-ac/pmove/oerror"
	"github.com/oomph-ac/pmove/pmove"
	"github.com/oomph-ac/pmove/snapshot"
	"github.com/oomph-ac/pmove/worker"
	"github.com/oomph-ac/pmove/world"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

// Recording is a run that can be replayed. World is the world before the first
// tick and is never modified by a replay.
type Recording struct {
	World    *world.World
	Config   pmove.Config
	TickMsec int32
	Ticks    uint64

	Characters []RecordedCharacter
}

// RecordedCharacter is the spawn point and input history of one character.
type RecordedCharacter struct {
	Name    string
	Spawn   mgl32.Vec3
	History []Frame
}

// Mismatch describes the first tick a replay diverged from its recording.
type Mismatch struct {
	Character string
	Tick      uint64
	Want, Got uint64
}

// Replay runs the recording again on a clone of its world and returns the first
// tick whose checksum differs from the recorded one, or nil if none did.
func Replay(rec Recording) (*Mismatch, error) {
	for _, c := range rec.Characters {
		if uint64(len(c.History)) != rec.Ticks {
			return nil, oerror.New("simulation: %q has %d frames, expected %d", c.Name, len(c.History), rec.Ticks)
		}
	}

	w := rec.World.Clone()
	players := make([]*pmove.Player, len(rec.Characters))
	for i, c := range rec.Characters {
		players[i] = pmove.New(w, pmove.Options{
			Config: rec.Config,
			Self:   game.Handle{ID: CharacterHandleBase + uint32(i), Generation: 1},
		})
		players[i].SetOrigin(c.Spawn)
	}

	for tick := uint64(0); tick < rec.Ticks; tick++ {
		for i, c := range rec.Characters {
			f := c.History[tick]
			players[i].SetPlayerInput(f.Command, f.ViewAngles)
			players[i].Evaluate(rec.TickMsec)
			if sum := snapshot.Checksum(players[i].Save()); sum != f.Checksum {
				return &Mismatch{Character: c.Name, Tick: tick, Want: f.Checksum, Got: sum}, nil
			}
		}
	}
	return nil, nil
}

// Verifier replays recordings concurrently on the worker pool.
type Verifier struct {
	log *logrus.Logger

	jobs       atomic.Uint64
	mismatches atomic.Uint64
	failures   atomic.Uint64
}

// NewVerifier creates a verifier. A nil logger discards everything.
func NewVerifier(log *logrus.Logger) *Verifier {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Verifier{log: log}
}

// Verify replays every recording and returns the mismatches found. Errors and
// panics of single replays are returned without stopping the others.
func (v *Verifier) Verify(recs ...Recording) ([]Mismatch, []error) {
	var (
		g          worker.Group
		mismatches = make([]*Mismatch, len(recs))
	)
	for i, rec := range recs {
		i, rec := i, rec
		g.Go(func() error {
			v.jobs.Inc()
			m, err := Replay(rec)
			if err != nil {
				return err
			}
			mismatches[i] = m
			return nil
		})
	}
	errs := g.Wait()
	v.failures.Add(uint64(len(errs)))
	for _, err := range errs {
		v.log.WithError(err).Error("replay failed")
	}

	var found []Mismatch
	for _, m := range mismatches {
		if m == nil {
			continue
		}
		v.mismatches.Inc()
		found = append(found, *m)
		v.log.WithFields(logrus.Fields{"character": m.Character, "tick": m.Tick}).Warn("replay diverged")
	}
	return found, errs
}

// Jobs returns the number of replays started.
func (v *Verifier) Jobs() uint64 {
	return v.jobs.Load()
}

// Mismatches returns the number of replays that diverged.
func (v *Verifier) Mismatches() uint64 {
	return v.mismatches.Load()
}

// Failures returns the number of replays that failed with an error or panic.
func (v *Verifier) Failures() uint64 {
	return v.failures.Load()
}
