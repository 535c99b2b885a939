package constant

// World
const (
	// Gravity is the downward acceleration in world units per second squared (screen space, +Y is down)
	Gravity = 900.0

	// AirDamping is the fraction of velocity a body keeps after one second of free flight
	AirDamping = 0.8

	// SolverIterations is the cp space iteration count
	SolverIterations = 20

	// BoundaryThickness is the depth of the floor and side walls, extending outward from the viewport edge
	BoundaryThickness = 60.0

	// BoundaryHeadroom is how far above the viewport the side walls extend, as a multiple of viewport height
	BoundaryHeadroom = 4.0
)

// Body material policy. Collision elasticity and friction in cp are products of both shapes,
// boundaries use 1.0 so the body values govern contacts against walls.
const (
	BodyRestitution     = 0.3
	BodyFriction        = 0.6
	BoundaryRestitution = 1.0
	BoundaryFriction    = 1.0

	// BodyDensity converts area (square units) to mass
	BodyDensity = 0.001

	// CornerRadiusRatio is the rounded-corner radius as a fraction of body width
	CornerRadiusRatio = 0.06
)

// Body Factory
const (
	// BodyAspect is height/width for every body (4:3)
	BodyAspect = 0.75

	// BodyBaseWidthMin and BodyBaseWidthMax bound the randomized base width before scale is applied
	BodyBaseWidthMin = 80.0
	BodyBaseWidthMax = 120.0

	// SpawnHeightAbove is the clearance between a new body's bottom edge and the top of the viewport
	SpawnHeightAbove = 20.0

	// SpawnTiltMax is the maximum initial tilt in radians (~11 degrees)
	SpawnTiltMax = 0.2

	// SpawnSpinMax is the maximum initial angular velocity in radians per second
	SpawnSpinMax = 0.5
)

// Drag constraint
const (
	// DragMaxForceFactor multiplied by held body mass bounds the pointer joint force
	DragMaxForceFactor = 6000.0

	// DragErrorBias is the fraction of joint error left after one second (soft spring feel)
	DragErrorBias = 0.001

	// PointerPickRadius is the search radius in world units around the pointer when picking a body
	PointerPickRadius = 12.0
)

// ScaleParameter
const (
	ScaleMin     = 50.0
	ScaleMax     = 150.0
	ScaleDefault = 100.0
	ScaleStep    = 5.0
)
