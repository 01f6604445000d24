package simulation

import (
	"io"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/pmove/game"
	"github.com/oomph-ac/pmove/oerror"
	"github.com/oomph-ac/pmove/omath"
	"github.com/oomph-ac/pmove/pmove"
	"github.com/oomph-ac/pmove/snapshot"
	"github.com/oomph-ac/pmove/world"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// CharacterHandleBase is the handle ID of the first character. Characters are
// numbered upwards from it so they never collide with brush entity handles.
const CharacterHandleBase = 1 << 16

// Frame is one recorded tick of a character.
type Frame struct {
	Command    pmove.Command
	ViewAngles mgl32.Vec3
	// Checksum is the state checksum after the tick.
	Checksum uint64
	// Speed is the speed orthogonal to gravity after the tick.
	Speed float32
}

// Character is a player driven by the runner.
type Character struct {
	Name   string
	Player *pmove.Player
	Spawn  mgl32.Vec3

	cmd     pmove.Command
	angles  mgl32.Vec3
	history []Frame
}

// SetInput sets the command used for the next ticks.
func (c *Character) SetInput(cmd pmove.Command, viewAngles mgl32.Vec3) {
	c.cmd, c.angles = cmd, viewAngles
}

// History returns the frames recorded so far.
func (c *Character) History() []Frame {
	return c.history
}

// SpeedStats returns the mean, standard deviation and maximum of the speed
// orthogonal to gravity over the recorded ticks.
func (c *Character) SpeedStats() (mean, stdDev, max float32) {
	speeds := make([]float32, len(c.history))
	for i, f := range c.history {
		speeds[i] = f.Speed
	}
	return omath.Mean(speeds), omath.StandardDeviation(speeds), omath.Max(speeds)
}

// Runner advances a world and the characters in it at a fixed tick rate.
type Runner struct {
	world *world.World
	// initial is the world as it was before the first tick, kept for replays.
	initial *world.World
	conf    pmove.Config
	log     *logrus.Logger

	tickMsec int32
	tick     uint64

	chars *orderedmap.OrderedMap[string, *Character]
	// spawns holds where every entity of the world started.
	spawns map[game.Handle]mgl32.Vec3
}

// NewRunner creates a runner for the world. A nil logger discards everything.
func NewRunner(w *world.World, conf pmove.Config, tickMsec int32, log *logrus.Logger) *Runner {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	spawns := make(map[game.Handle]mgl32.Vec3)
	for _, e := range w.Entities() {
		spawns[e.Handle()] = e.Origin()
	}
	return &Runner{
		world:    w,
		initial:  w.Clone(),
		conf:     conf,
		log:      log,
		tickMsec: tickMsec,
		chars:    orderedmap.NewOrderedMap[string, *Character](),
		spawns:   spawns,
	}
}

// Add spawns a character. Names must be unique.
func (r *Runner) Add(name string, origin mgl32.Vec3, opts pmove.Options) (*Character, error) {
	if _, ok := r.chars.Get(name); ok {
		return nil, oerror.New("simulation: character %q already exists", name)
	}
	if r.tick != 0 {
		return nil, oerror.New("simulation: can not add %q after the first tick", name)
	}

	opts.Config = r.conf
	opts.Self = game.Handle{ID: CharacterHandleBase + uint32(r.chars.Len()), Generation: 1}
	if opts.Log == nil {
		opts.Log = r.log
	}
	c := &Character{Name: name, Player: pmove.New(r.world, opts), Spawn: origin}
	c.Player.SetOrigin(origin)
	r.chars.Set(name, c)

	r.log.WithFields(logrus.Fields{"character": name, "handle": opts.Self, "origin": origin}).Info("spawned character")
	return c, nil
}

// Character returns the character with the given name.
func (r *Runner) Character(name string) (*Character, bool) {
	return r.chars.Get(name)
}

// Tick advances every character by one tick in the order they were added and
// returns their results by name.
func (r *Runner) Tick() map[string]pmove.MoveResult {
	res := make(map[string]pmove.MoveResult, r.chars.Len())
	for el := r.chars.Front(); el != nil; el = el.Next() {
		c := el.Value
		c.Player.SetPlayerInput(c.cmd, c.angles)
		mr := c.Player.Evaluate(r.tickMsec)
		sum := snapshot.Checksum(c.Player.Save())
		speed := omath.RemoveComponent(mr.Velocity, c.Player.GravityNormal()).Len()
		c.history = append(c.history, Frame{Command: c.cmd, ViewAngles: c.angles, Checksum: sum, Speed: speed})
		res[c.Name] = mr

		r.log.WithFields(logrus.Fields{
			"character":  c.Name,
			"tick":       r.tick,
			"locomotion": mr.Locomotion,
			"origin":     mr.Origin,
			"velocity":   mr.Velocity,
		}).Debug("moved character")
	}
	r.tick++
	return res
}

// PushedEntities returns the names of the entities that were moved away from
// where they were when the runner was created.
func (r *Runner) PushedEntities() []string {
	pushed := lo.Filter(r.world.Entities(), func(e *world.Entity, _ int) bool {
		spawn, ok := r.spawns[e.Handle()]
		return !ok || e.Origin() != spawn
	})
	return lo.Map(pushed, func(e *world.Entity, _ int) string {
		return e.Name()
	})
}

// Ticks returns the number of ticks run.
func (r *Runner) Ticks() uint64 {
	return r.tick
}

// Recording returns everything needed to replay the run so far.
func (r *Runner) Recording() Recording {
	rec := Recording{World: r.initial, Config: r.conf, TickMsec: r.tickMsec, Ticks: r.tick}
	for el := r.chars.Front(); el != nil; el = el.Next() {
		c := el.Value
		rec.Characters = append(rec.Characters, RecordedCharacter{
			Name:    c.Name,
			Spawn:   c.Spawn,
			History: append([]Frame(nil), c.history...),
		})
	}
	return rec
}
