package pmove

import (
	"io"

	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/pmove/game"
	"github.com/oomph-ac/pmove/omath"
	"github.com/sirupsen/logrus"
)

// MantleListener is called whenever the mantle phase of a character changes.
// Sounds, weapon lowering and influence levels hook in here.
type MantleListener func(from, to MantlePhase)

// Options are the construction parameters of a Player.
type Options struct {
	Config Config
	// Self is the handle of the character. Traces ignore it.
	Self game.Handle
	// Log receives debug output. A nil logger discards everything.
	Log *logrus.Logger
	// OnCollide is notified of every surface the character runs into or lands on.
	OnCollide func(tr game.Trace, velocity mgl32.Vec3)
	// OnMantle is notified of mantle phase changes.
	OnMantle MantleListener
}

// Player is the movement controller of a single character. It is not safe for
// concurrent use.
type Player struct {
	geo  GeometryQuery
	self game.Handle
	conf Config

	current KinematicState
	saved   KinematicState

	walkSpeed     float32
	crouchSpeed   float32
	maxStepHeight float32
	maxJumpHeight float32
	debugLevel    bool
	flying        bool

	command    Command
	viewAngles mgl32.Vec3

	framemsec   int32
	frametime   float32
	playerSpeed float32
	viewForward mgl32.Vec3
	viewRight   mgl32.Vec3

	contact  ContactState
	contacts []game.Contact

	mantle MantleState

	bounds        cube.BBox
	axis          mgl32.Mat3
	clipMask      game.Contents
	gravity       mgl32.Vec3
	gravityNormal mgl32.Vec3
	invMass       float32

	master         game.Handle
	masterYaw      float32
	masterDeltaYaw float32

	onCollide func(tr game.Trace, velocity mgl32.Vec3)
	onMantle  MantleListener

	log *logrus.Logger
	Dbg *Debugger
}

// New creates a movement controller querying the given geometry.
func New(geo GeometryQuery, opts Options) *Player {
	log := opts.Log
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}

	conf := opts.Config
	p := &Player{
		geo:  geo,
		self: opts.Self,
		conf: conf,

		walkSpeed:     conf.WalkSpeed,
		crouchSpeed:   conf.CrouchSpeed,
		maxStepHeight: conf.MaxStepHeight,
		maxJumpHeight: conf.MaxJumpHeight,

		bounds:   game.PlayerBounds(conf.BoundsWidth, conf.NormalHeight),
		axis:     mgl32.Ident3(),
		clipMask: conf.ClipMask,

		onCollide: opts.OnCollide,
		onMantle:  opts.OnMantle,

		log: log,
		Dbg: NewDebugger(log),
	}
	if conf.Mass > 0 {
		p.invMass = 1 / conf.Mass
	}
	p.mantle.StartArmed = true
	p.SetGravity(conf.Gravity)
	return p
}

// Handle returns the handle of the character.
func (p *Player) Handle() game.Handle {
	return p.self
}

// Config returns the configuration the player was created with.
func (p *Player) Config() Config {
	return p.conf
}

func (p *Player) Origin() mgl32.Vec3 {
	return p.current.Origin
}

func (p *Player) Axis() mgl32.Mat3 {
	return p.axis
}

// Bounds returns the current collision shape relative to the origin.
func (p *Player) Bounds() cube.BBox {
	return p.bounds
}

func (p *Player) ClipMask() game.Contents {
	return p.clipMask
}

// SetClipMask changes the contents the character collides with.
func (p *Player) SetClipMask(mask game.Contents) {
	p.clipMask = mask
}

// Mantleable is always false: characters can not be climbed onto.
func (p *Player) Mantleable() bool {
	return false
}

func (p *Player) Velocity() mgl32.Vec3 {
	return p.current.Velocity
}

func (p *Player) SetVelocity(vel mgl32.Vec3) {
	p.current.Velocity = vel
}

// State returns a copy of the kinematic state.
func (p *Player) State() KinematicState {
	return p.current
}

// SetState replaces the kinematic state, e.g. with one received over the
// network, and re-evaluates contacts at the new origin.
func (p *Player) SetState(s KinematicState) {
	p.current = s
	p.link()
	p.evaluateContacts()
}

// Contact returns a copy of the contact state of the last tick.
func (p *Player) Contact() ContactState {
	return p.contact
}

// Mantle returns a copy of the mantle state.
func (p *Player) Mantle() MantleState {
	return p.mantle
}

func (p *Player) Gravity() mgl32.Vec3 {
	return p.gravity
}

// GravityNormal returns the unit direction gravity pulls in.
func (p *Player) GravityNormal() mgl32.Vec3 {
	return p.gravityNormal
}

// SetGravity changes the gravity vector. A zero vector is ignored.
func (p *Player) SetGravity(g mgl32.Vec3) {
	n, l := omath.Normalize(g)
	if l == 0 {
		return
	}
	p.gravity = g
	p.gravityNormal = n
}

// SetPlayerInput supplies the command and view angles for the next tick.
func (p *Player) SetPlayerInput(cmd Command, viewAngles mgl32.Vec3) {
	p.command = cmd.Clamped()
	p.viewAngles = viewAngles
}

func (p *Player) Command() Command {
	return p.command
}

func (p *Player) ViewAngles() mgl32.Vec3 {
	return p.viewAngles
}

func (p *Player) SetSpeed(walkSpeed, crouchSpeed float32) {
	p.walkSpeed = walkSpeed
	p.crouchSpeed = crouchSpeed
}

func (p *Player) SetMaxStepHeight(height float32) {
	p.maxStepHeight = height
}

func (p *Player) MaxStepHeight() float32 {
	return p.maxStepHeight
}

func (p *Player) SetMaxJumpHeight(height float32) {
	p.maxJumpHeight = height
}

// SetFlying lets the character fly freely without gravity while it is alive.
// Ladders, water and mantling are ignored while flying.
func (p *Player) SetFlying(set bool) {
	p.flying = set
}

func (p *Player) Flying() bool {
	return p.flying
}

func (p *Player) SetMovementType(t MovementType) {
	p.current.MovementType = t
}

func (p *Player) MovementType() MovementType {
	return p.current.MovementType
}

// SetDebugLevel toggles the ground diagnostics.
func (p *Player) SetDebugLevel(set bool) {
	p.debugLevel = set
}

// SetKnockBack arms the knockback timer unless another timer is running.
func (p *Player) SetKnockBack(msec int32) {
	if p.current.MovementTime != 0 {
		return
	}
	p.current.ArmTimer(FlagTimeKnockback, msec)
}

// WaterLevel returns the immersion depth of the last tick.
func (p *Player) WaterLevel() WaterLevel {
	return p.contact.WaterLevel
}

// WaterContents returns the contents of the water the character is in.
func (p *Player) WaterContents() game.Contents {
	return p.contact.WaterContents
}

func (p *Player) HasJumped() bool {
	return p.current.Flags.Has(FlagJumped)
}

func (p *Player) HasSteppedUp() bool {
	return p.current.Flags.Has(FlagSteppedUp) || p.current.Flags.Has(FlagSteppedDown)
}

// StepUp returns the vertical displacement caused by stepping this tick.
func (p *Player) StepUp() float32 {
	return p.current.StepUp
}

func (p *Player) IsCrouching() bool {
	return p.current.Flags.Has(FlagDucked)
}

func (p *Player) OnLadder() bool {
	return p.contact.Ladder
}

func (p *Player) OnGround() bool {
	return p.contact.Walking
}

// GroundEntity returns the entity the character stands on.
func (p *Player) GroundEntity() game.Handle {
	return p.contact.GroundEntity
}

// EyePosition returns the world position of the eyes.
func (p *Player) EyePosition() mgl32.Vec3 {
	height := p.conf.NormalViewHeight
	if p.current.Flags.Has(FlagDucked) {
		height = p.conf.CrouchViewHeight
	}
	return p.current.Origin.Sub(p.gravityNormal.Mul(height))
}

// ImpactInfo describes how the character reacts to impulses.
func (p *Player) ImpactInfo(_ int32, _ mgl32.Vec3) game.ImpactInfo {
	return game.ImpactInfo{InvMass: p.invMass, Velocity: p.current.Velocity}
}

// ApplyImpulse changes the velocity of the character. Noclip ignores impulses.
func (p *Player) ApplyImpulse(_ int32, _ mgl32.Vec3, impulse mgl32.Vec3) {
	if p.current.MovementType == MovementNoclip {
		return
	}
	p.current.Velocity = p.current.Velocity.Add(impulse.Mul(p.invMass))
}

// SaveState keeps a copy of the kinematic state for a later rewind.
func (p *Player) SaveState() {
	p.saved = p.current
}

// RestoreState rewinds to the state kept by SaveState.
func (p *Player) RestoreState() {
	p.current = p.saved
	p.link()
	p.evaluateContacts()
}

// SetOrigin places the character. When bound to a master the origin is
// relative to it.
func (p *Player) SetOrigin(origin mgl32.Vec3) {
	p.current.LocalOrigin = origin
	if mOrigin, mAxis, ok := p.masterPosition(); ok {
		p.current.Origin = mOrigin.Add(mAxis.Mul3x1(origin))
	} else {
		p.current.Origin = origin
	}
	p.link()
}

// Translate moves the character by the given offset.
func (p *Player) Translate(translation mgl32.Vec3) {
	p.current.LocalOrigin = p.current.LocalOrigin.Add(translation)
	p.current.Origin = p.current.Origin.Add(translation)
	p.link()
}

// Rotate rotates the origin of the character around the world origin.
func (p *Player) Rotate(rotation mgl32.Mat3) {
	p.current.Origin = rotation.Mul3x1(p.current.Origin)
	if mOrigin, mAxis, ok := p.masterPosition(); ok {
		p.current.LocalOrigin = mAxis.Transpose().Mul3x1(p.current.Origin.Sub(mOrigin))
	} else {
		p.current.LocalOrigin = p.current.Origin
	}
	p.link()
}

// SetPushed derives the push velocity from the displacement since the last
// SaveState. Downward pushes are ignored.
func (p *Player) SetPushed(deltaMsec int32) {
	if deltaMsec <= 0 {
		return
	}
	vel := p.current.Origin.Sub(p.saved.Origin).Mul(1000 / float32(deltaMsec))
	if d := vel.Dot(p.gravityNormal); d > 0 {
		vel = vel.Sub(p.gravityNormal.Mul(d))
	}
	p.current.PushVelocity = p.current.PushVelocity.Add(vel)
}

func (p *Player) PushedVelocity() mgl32.Vec3 {
	return p.current.PushVelocity
}

func (p *Player) ClearPushedVelocity() {
	p.current.PushVelocity = mgl32.Vec3{}
}

// SetMaster binds the character to an entity. The zero handle unbinds it.
func (p *Player) SetMaster(master game.Handle) {
	if master.IsNone() {
		p.master = game.NoEntity
		return
	}
	if p.master.IsNone() {
		ent, ok := p.geo.Entity(master)
		if !ok {
			return
		}
		mAxis := ent.Axis()
		p.current.LocalOrigin = mAxis.Transpose().Mul3x1(p.current.Origin.Sub(ent.Origin()))
		p.master = master
		p.masterYaw = omath.Yaw(mAxis.Col(0))
	}
	p.contacts = p.contacts[:0]
}

func (p *Player) Master() game.Handle {
	return p.master
}

// MasterDeltaYaw returns how far the master turned during the last tick.
func (p *Player) MasterDeltaYaw() float32 {
	return p.masterDeltaYaw
}

// masterPosition resolves the master. A master that no longer exists unbinds
// the character.
func (p *Player) masterPosition() (mgl32.Vec3, mgl32.Mat3, bool) {
	if p.master.IsNone() {
		return mgl32.Vec3{}, mgl32.Mat3{}, false
	}
	ent, ok := p.geo.Entity(p.master)
	if !ok {
		p.master = game.NoEntity
		return mgl32.Vec3{}, mgl32.Mat3{}, false
	}
	return ent.Origin(), ent.Axis(), true
}

func (p *Player) link() {
	if l, ok := p.geo.(BodyLinker); ok {
		l.Link(p)
	}
}

func (p *Player) collide(tr game.Trace, vel mgl32.Vec3) {
	if p.onCollide != nil {
		p.onCollide(tr, vel)
	}
}

// trace sweeps the current shape of the character.
func (p *Player) trace(start, end mgl32.Vec3) game.Trace {
	return p.traceShape(p.bounds, start, end)
}

func (p *Player) traceShape(shape cube.BBox, start, end mgl32.Vec3) game.Trace {
	return p.geo.Trace(game.TraceQuery{
		Shape:  shape,
		Axis:   p.axis,
		Start:  start,
		End:    end,
		Mask:   p.clipMask,
		Ignore: p.self,
	})
}

func (p *Player) up() mgl32.Vec3 {
	return p.gravityNormal.Mul(-1)
}

// flatten removes the gravity component of v.
func (p *Player) flatten(v mgl32.Vec3) mgl32.Vec3 {
	return omath.RemoveComponent(v, p.gravityNormal)
}

func vecLen(v mgl32.Vec3) float32 {
	return math32.Sqrt(v.Dot(v))
}
