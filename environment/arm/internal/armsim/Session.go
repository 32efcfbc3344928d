// Package armsim owns the physics-simulation session behind the arm
// environment. A Session maintains a Box2D world containing a fixed
// base, the chain of motorised arm links, and the target body, and it
// advances that world one fixed-size tick at a time.
//
// A Session is a process-wide exclusive resource: only one Session may
// be open at a time, and a Session must be closed before another can
// be created.
package armsim

import (
	"fmt"
	"math"
	"sync"

	"github.com/ByteArena/box2d"

	env "github.com/armsim/reacharm/environment"
)

const (
	velocityIterations int = 6
	positionIterations int = 2
)

var (
	sessionMu   sync.Mutex
	sessionOpen bool
)

// Session is a handle to an open physics simulation containing the
// arm and its target
type Session struct {
	world  box2d.B2World
	dt     float64
	robot  *RobotDescription
	target *TargetDescription

	base   *box2d.B2Body
	links  []*box2d.B2Body
	joints []*box2d.B2RevoluteJoint

	targetBody *box2d.B2Body

	closed bool
}

// NewSession opens the process-wide simulation session and loads the
// ground body, robot, and target into a new world. It fails with
// environment.ErrSessionActive if another session is open, and with a
// *environment.ConfigError if the descriptions or timestep are
// invalid.
func NewSession(robot *RobotDescription, target *TargetDescription,
	timestep float64) (*Session, error) {
	if timestep <= 0 {
		return nil, env.Configf("newSession", "timestep must be positive, "+
			"got %v", timestep)
	}
	if err := robot.Validate(); err != nil {
		return nil, err
	}
	if err := target.Validate(); err != nil {
		return nil, err
	}

	sessionMu.Lock()
	if sessionOpen {
		sessionMu.Unlock()
		return nil, fmt.Errorf("newSession: %w", env.ErrSessionActive)
	}
	sessionOpen = true
	sessionMu.Unlock()

	// The arm moves in a horizontal plane, so the world itself is
	// gravity-free
	s := &Session{
		world:  box2d.MakeB2World(box2d.MakeB2Vec2(0.0, 0.0)),
		dt:     timestep,
		robot:  robot,
		target: target,
	}

	s.createBase()
	s.createArm()
	s.createTarget()

	return s, nil
}

// createBase creates the static ground body the arm is anchored to
func (s *Session) createBase() {
	baseDef := box2d.NewB2BodyDef()
	baseDef.Position = box2d.MakeB2Vec2(0.0, 0.0)
	s.base = s.world.CreateBody(baseDef)

	baseShape := box2d.NewB2CircleShape()
	baseShape.M_radius = s.robot.Links[0].Width

	baseFix := box2d.MakeB2FixtureDef()
	baseFix.Shape = baseShape
	filter := box2d.MakeB2Filter()
	filter.GroupIndex = -1 // arm parts never collide with each other
	baseFix.Filter = filter

	s.base.CreateFixtureFromDef(&baseFix)
}

// createArm creates the chain of dynamic link bodies joined by
// motorised revolute joints. At zero joint angles the arm lies
// extended along the positive x-axis.
func (s *Session) createArm() {
	s.links = make([]*box2d.B2Body, len(s.robot.Links))
	s.joints = make([]*box2d.B2RevoluteJoint, len(s.robot.Joints))

	prevBody := s.base
	jointX := 0.0
	for i, link := range s.robot.Links {
		linkDef := box2d.NewB2BodyDef()
		linkDef.Type = 2 // Dynamic body
		linkDef.Position = box2d.MakeB2Vec2(jointX+link.Length/2, 0.0)
		linkDef.Angle = 0.0

		body := s.world.CreateBody(linkDef)
		s.links[i] = body

		linkShape := box2d.NewB2PolygonShape()
		linkShape.SetAsBox(link.Length/2, link.Width/2)

		linkFix := box2d.MakeB2FixtureDef()
		linkFix.Shape = linkShape
		linkFix.Density = link.Density
		linkFix.Friction = 0.1
		linkFix.Restitution = 0.0
		filter := box2d.MakeB2Filter()
		filter.GroupIndex = -1
		linkFix.Filter = filter

		body.CreateFixtureFromDef(&linkFix)

		joint := s.robot.Joints[i]
		rjd := box2d.MakeB2RevoluteJointDef()
		rjd.BodyA = prevBody
		rjd.BodyB = body
		if i == 0 {
			rjd.LocalAnchorA = box2d.MakeB2Vec2(0.0, 0.0)
		} else {
			rjd.LocalAnchorA = box2d.MakeB2Vec2(
				s.robot.Links[i-1].Length/2, 0.0)
		}
		rjd.LocalAnchorB = box2d.MakeB2Vec2(-link.Length/2, 0.0)
		rjd.ReferenceAngle = 0.0
		rjd.EnableLimit = true
		rjd.LowerAngle = joint.Limit[0]
		rjd.UpperAngle = joint.Limit[1]
		rjd.EnableMotor = true
		rjd.MaxMotorTorque = joint.MaxTorque
		rjd.MotorSpeed = 0.0

		s.joints[i] = s.world.CreateJoint(&rjd).(*box2d.B2RevoluteJoint)

		prevBody = body
		jointX += link.Length
	}
}

// createTarget creates the static sensor body marking the target
// position
func (s *Session) createTarget() {
	targetDef := box2d.NewB2BodyDef()
	targetDef.Position = box2d.MakeB2Vec2(s.robot.MaxReach(), 0.0)
	s.targetBody = s.world.CreateBody(targetDef)

	targetShape := box2d.NewB2CircleShape()
	targetShape.M_radius = s.target.Radius

	targetFix := box2d.MakeB2FixtureDef()
	targetFix.Shape = targetShape
	targetFix.IsSensor = true
	filter := box2d.MakeB2Filter()
	filter.GroupIndex = -1
	targetFix.Filter = filter

	s.targetBody.CreateFixtureFromDef(&targetFix)
}

// NumJoints returns the number of actuated joints in the session
func (s *Session) NumJoints() int {
	return len(s.joints)
}

// Dt returns the size of a single simulation tick in seconds
func (s *Session) Dt() float64 {
	return s.dt
}

// Robot returns the robot description the session was built from
func (s *Session) Robot() *RobotDescription {
	return s.robot
}

// Target returns the target description the session was built from
func (s *Session) Target() *TargetDescription {
	return s.target
}

// Step applies the control vector to the joint motors and advances the
// simulation by exactly one tick. Control values are motor speeds in
// radians per second. Simulation divergence (NaN or Inf in the
// resulting state) is fatal and propagates; the session state is not
// silently repaired.
func (s *Session) Step(control []float64) error {
	if s.closed {
		return fmt.Errorf("step: %w", env.ErrInvalidState)
	}
	if len(control) != len(s.joints) {
		return fmt.Errorf("step: invalid control dimensions \n\thave(%v) "+
			"\n\twant(%v)", len(control), len(s.joints))
	}

	for i, joint := range s.joints {
		joint.SetMotorSpeed(control[i])
	}

	s.world.Step(s.dt, velocityIterations, positionIterations)

	pos, vel := s.JointState()
	for i := range pos {
		if !finite(pos[i]) || !finite(vel[i]) {
			return fmt.Errorf("step: simulation diverged at joint %v: "+
				"angle %v, velocity %v", i, pos[i], vel[i])
		}
	}
	return nil
}

// JointState returns the current joint angles and angular velocities
func (s *Session) JointState() (pos, vel []float64) {
	pos = make([]float64, len(s.joints))
	vel = make([]float64, len(s.joints))
	for i, joint := range s.joints {
		pos[i] = joint.GetJointAngle()
		vel[i] = joint.GetJointSpeed()
	}
	return pos, vel
}

// SetJointState teleports the arm to the given joint angles and
// angular velocities. Angles outside the joint limits are clipped.
func (s *Session) SetJointState(pos, vel []float64) error {
	if s.closed {
		return fmt.Errorf("setJointState: %w", env.ErrInvalidState)
	}
	if len(pos) != len(s.joints) || len(vel) != len(s.joints) {
		return fmt.Errorf("setJointState: invalid state dimensions "+
			"\n\thave(%v, %v) \n\twant(%v, %v)", len(pos), len(vel),
			len(s.joints), len(s.joints))
	}

	angles := make([]float64, len(pos))
	for i := range pos {
		angles[i] = clip(pos[i], s.robot.Joints[i].Limit[0],
			s.robot.Joints[i].Limit[1])
	}

	// Place each link so that the joint angles are exactly the
	// requested ones. Absolute link angles accumulate along the chain.
	jointPos := box2d.MakeB2Vec2(0.0, 0.0)
	absAngle := 0.0
	absOmega := 0.0
	jointVel := box2d.MakeB2Vec2(0.0, 0.0)
	for i, link := range s.robot.Links {
		absAngle += angles[i]
		absOmega += vel[i]

		half := box2d.MakeB2Vec2(link.Length/2*math.Cos(absAngle),
			link.Length/2*math.Sin(absAngle))
		centre := box2d.MakeB2Vec2(jointPos.X+half.X, jointPos.Y+half.Y)

		body := s.links[i]
		body.SetTransform(centre, absAngle)
		body.SetAngularVelocity(absOmega)
		// Rigid-body velocity of the link centre: the velocity of the
		// inboard joint plus rotation about it
		body.SetLinearVelocity(box2d.MakeB2Vec2(
			jointVel.X-absOmega*half.Y,
			jointVel.Y+absOmega*half.X,
		))
		body.SetAwake(true)

		jointVel = box2d.MakeB2Vec2(
			jointVel.X-absOmega*(2*half.Y),
			jointVel.Y+absOmega*(2*half.X),
		)
		jointPos = box2d.MakeB2Vec2(jointPos.X+2*half.X, jointPos.Y+2*half.Y)
	}
	return nil
}

// EffectorPosition returns the 3D position of the arm's end effector.
// The z coordinate is the fixed height of the effector plane.
func (s *Session) EffectorPosition() []float64 {
	last := len(s.links) - 1
	tip := s.links[last].GetWorldPoint(
		box2d.MakeB2Vec2(s.robot.Links[last].Length/2, 0.0))
	return []float64{tip.X, tip.Y, s.robot.EffectorHeight}
}

// TargetPosition returns the 3D position of the target body
func (s *Session) TargetPosition() []float64 {
	pos := s.targetBody.GetPosition()
	return []float64{pos.X, pos.Y, s.target.Height}
}

// MoveTarget teleports the target body to (x, y) in the plane
func (s *Session) MoveTarget(x, y float64) error {
	if s.closed {
		return fmt.Errorf("moveTarget: %w", env.ErrInvalidState)
	}
	s.targetBody.SetTransform(box2d.MakeB2Vec2(x, y), 0.0)
	return nil
}

// Close releases the process-wide session. Close is idempotent:
// closing an already-closed session does nothing and returns nil.
func (s *Session) Close() error {
	sessionMu.Lock()
	defer sessionMu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	sessionOpen = false
	return nil
}

// Closed returns whether the session has been closed
func (s *Session) Closed() bool {
	return s.closed
}

func clip(value, min, max float64) float64 {
	return math.Max(math.Min(value, max), min)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
