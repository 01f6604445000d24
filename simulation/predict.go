package simulation

import (
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/pmove/oerror"
	"github.com/oomph-ac/pmove/pmove"
	"github.com/oomph-ac/pmove/snapshot"
	"github.com/sirupsen/logrus"
)

// ReconcileTolerance is how far a predicted origin may be off the
// authoritative one before the prediction is corrected.
const ReconcileTolerance = 1.0 / 32

// Predictor runs a character ahead of the authoritative simulation and
// corrects it when a snapshot of the authoritative state disagrees.
type Predictor struct {
	p        *pmove.Player
	tickMsec int32
	tick     uint64

	history     *ring
	corrections int

	log *logrus.Logger
}

// NewPredictor creates a predictor keeping the last window ticks of the player
// for reconciliation. A nil logger discards everything.
func NewPredictor(p *pmove.Player, tickMsec int32, window int, log *logrus.Logger) *Predictor {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Predictor{p: p, tickMsec: tickMsec, history: newRing(window), log: log}
}

// Player returns the predicted player.
func (pr *Predictor) Player() *pmove.Player {
	return pr.p
}

// Tick returns the tick the next Predict call simulates.
func (pr *Predictor) Tick() uint64 {
	return pr.tick
}

// Corrections returns how many snapshots forced a correction.
func (pr *Predictor) Corrections() int {
	return pr.corrections
}

// Predict simulates the next tick with the given input and remembers it.
func (pr *Predictor) Predict(cmd pmove.Command, viewAngles mgl32.Vec3) pmove.MoveResult {
	pr.p.SetPlayerInput(cmd, viewAngles)
	res := pr.p.Evaluate(pr.tickMsec)
	pr.history.add(predicted{Tick: pr.tick, Command: cmd, ViewAngles: viewAngles, State: pr.p.State()})
	pr.tick++
	return res
}

// Reconcile compares the authoritative snapshot of the given tick with what
// was predicted for it. On a mismatch the player is reset to the snapshot and
// every later tick is simulated again. It reports whether a correction was
// needed.
func (pr *Predictor) Reconcile(tick uint64, data []byte) (bool, error) {
	server, err := snapshot.Decode(data)
	if err != nil {
		return false, err
	}
	local, ok := pr.history.get(tick)
	if !ok {
		return false, oerror.New("simulation: tick %d is outside the prediction window", tick)
	}
	if agrees(local.State, server) {
		return false, nil
	}

	pr.corrections++
	pr.log.WithFields(logrus.Fields{
		"tick":      tick,
		"predicted": local.State.Origin,
		"server":    server.Origin,
	}).Debug("correcting prediction")

	pr.p.SetState(server)
	for _, f := range pr.history.after(tick) {
		pr.p.SetPlayerInput(f.Command, f.ViewAngles)
		pr.p.Evaluate(pr.tickMsec)
		f.State = pr.p.State()
	}
	return true, nil
}

// agrees returns true if a predicted state matches an authoritative one that
// went through a snapshot.
func agrees(local, server pmove.KinematicState) bool {
	if local.MovementType != server.MovementType || local.Flags != server.Flags || local.MovementTime != server.MovementTime {
		return false
	}
	if local.Origin.Sub(server.Origin).Len() > ReconcileTolerance {
		return false
	}
	return snapshot.Velocity(local.Velocity).ApproxEqualThreshold(server.Velocity, ReconcileTolerance)
}
