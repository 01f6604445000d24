package pmove

const (
	StopSpeed   = 100.0
	SwimScale   = 0.5
	LadderSpeed = 100.0
	StepScale   = 1.0

	GroundAccelerate = 10.0
	AirAccelerate    = 1.0
	WaterAccelerate  = 4.0
	FlyAccelerate    = 8.0

	GroundFriction = 6.0
	AirFriction    = 0.0
	WaterFriction  = 1.0
	FlyFriction    = 3.0
	NoclipFriction = 12.0

	// MinWalkNormal is the smallest dot of a surface normal with up that can be walked on.
	MinWalkNormal = 0.7
	Overclip      = 1.001

	MaxBumps      = 4
	MaxClipPlanes = 5
	// SamePlaneCos is the cosine above which a hit normal counts as an already registered plane.
	SamePlaneCos = 0.999
	// ClipInteract is how far velocity may point into a clip plane before it counts as entering it.
	ClipInteract = 0.1

	PushMassFloor   = 20.0
	PushMassCeiling = 1000.0
	PushMassRange   = 950.0

	ContactEpsilon = 0.25

	JumpThreshold = 10
	AxialMoveMax  = 127

	KickoffSpeed       = 10.0
	MaxSteepSlideSpeed = 150.0
	LandingFallSpeed   = 200.0
	LandingTime        = 250

	WaterJumpForward = 200.0
	WaterJumpUp      = 350.0
	WaterJumpTime    = 2000
	WaterJumpReach   = 30.0
	WaterJumpFloor   = 4.0
	WaterJumpClear   = 16.0
	WaterSinkSpeed   = 60.0

	LadderStickSpeed   = 100.0
	LadderTraceWalking = 1.0
	LadderTraceAir     = 48.0
	LadderStepFraction = 0.75

	DeadFriction    = 20.0
	NoclipStopSpeed = 20.0

	GroundImpulseScale = 10.0
	HangImpulseScale   = 2.0

	MantleTestIncrement = 1.0
	MantleSlabThickness = 0.02

	MantleRockHang       = 2.0
	MantleRockShiftHands = 1.0
	MantleRockPush       = 10.0
)
