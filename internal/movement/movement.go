// Package movement implements a plate's rigid-body kinematics: velocity unit
// vector, scalar speed, rotation sign, impulse accumulation, friction, and
// elastic collision response.
package movement

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/onuse/lithogen/internal/geom"
	"github.com/onuse/lithogen/internal/prng"
)

// Collider is the minimal capability set movement.Collide needs from the other
// party in a collision: its mass, center of mass, velocity unit vector, and the
// ability to receive a counter-impulse. Tests satisfy it with a small stand-in
// instead of a full plate.
type Collider interface {
	Mass() float64
	CenterOfMass() mgl64.Vec2
	VelocityUnit() mgl64.Vec2
	DecImpulse(delta mgl64.Vec2)
}

// Movement is a plate's motion state.
type Movement struct {
	unit         mgl64.Vec2
	speed        float64
	rotationSign float64
	impulse      mgl64.Vec2
}

// New draws an initial unit velocity vector and rotation sign from prng. The
// rotation sign is drawn first, then the heading angle; the draw order is part
// of the engine's reproducibility contract and must not change.
func New(p *prng.PRNG) *Movement {
	rotationSign := 1.0
	if !p.NextBool() {
		rotationSign = -1.0
	}
	angle := 2 * math.Pi * p.NextDouble()
	return &Movement{
		unit:         mgl64.Vec2{math.Cos(angle), math.Sin(angle)},
		speed:        1,
		rotationSign: rotationSign,
	}
}

// VelocityUnit returns the current unit heading.
func (m *Movement) VelocityUnit() mgl64.Vec2 { return m.unit }

// Speed returns the current scalar speed (always >= 0).
func (m *Movement) Speed() float64 { return m.speed }

// Velocity returns the full velocity vector (unit * speed).
func (m *Movement) Velocity() mgl64.Vec2 { return m.unit.Mul(m.speed) }

// AddImpulse accumulates v into the pending impulse.
func (m *Movement) AddImpulse(v mgl64.Vec2) { m.impulse = m.impulse.Add(v) }

// DecImpulse subtracts v from the pending impulse. Satisfies Collider so that
// one plate's Collide call can apply a counter-impulse to the other.
func (m *Movement) DecImpulse(v mgl64.Vec2) { m.impulse = m.impulse.Sub(v) }

// Move advances the heading for one step: applies pending impulse, renormalizes
// to a unit vector (asserting it is non-zero), updates speed, then bends the
// heading along a small circular arc whose curvature depends on speed and
// rotation sign.
func (m *Movement) Move(world geom.Dimension) {
	m.unit = m.unit.Add(m.impulse)
	m.impulse = mgl64.Vec2{0, 0}

	length := m.unit.Len()
	if length == 0 {
		panic("movement: velocity unit vector degenerated to zero")
	}
	m.unit = m.unit.Mul(1 / length)
	m.speed = math.Max(0, m.speed+length-1)

	worldAvgSide := float64(world.W+world.H) / 2
	alpha := m.speed / (worldAvgSide * 0.33)
	alphaVel := m.rotationSign * alpha * m.speed
	c, sn := math.Cos(alphaVel), math.Sin(alphaVel)
	m.unit = mgl64.Vec2{
		m.unit.X()*c - m.unit.Y()*sn,
		m.unit.Y()*c + m.unit.X()*sn,
	}
}

// ApplyFriction reduces speed in proportion to deformedMass/plateMass, scaled
// by the deformation weight. If plateMass is zero, speed drops to zero.
func ApplyFriction(m *Movement, deformationWeight, deformedMass, plateMass float64) {
	if plateMass == 0 {
		m.speed = 0
		return
	}
	m.speed = math.Max(0, m.speed-deformationWeight*deformedMass/plateMass)
}

// ThisMass is the capability Collide needs from the plate this Movement belongs
// to: its mass and center of mass (distinct from Collider because the "this"
// side never needs to receive a counter-impulse through this interface — its
// own Movement already holds the impulse accumulator).
type ThisMass interface {
	Mass() float64
	CenterOfMass() mgl64.Vec2
}

// Collide computes an elastic impulse exchange (coefficient of restitution 0 on
// the normal component) between the plate owning this Movement and other, using
// collMass as the mass of the colliding crust. A no-op when the two plates share
// a center of mass (degenerate geometry) or are moving apart.
func (m *Movement) Collide(this ThisMass, other Collider, collMass float64) {
	centersDelta := other.CenterOfMass().Sub(this.CenterOfMass())
	distance := centersDelta.Len()
	if distance <= 0 {
		return
	}

	n := centersDelta.Mul(1 / distance)
	rel := m.unit.Sub(other.VelocityUnit())
	relDotN := n.Dot(rel)
	if relDotN <= 0 {
		return
	}

	nLen2 := n.Dot(n)
	denom := nLen2 * (1/other.Mass() + 1/collMass)
	j := -relDotN / denom

	m.AddImpulse(n.Mul(j / this.Mass()))
	other.DecImpulse(n.Mul(j / (collMass + other.Mass())))
}

func (m *Movement) String() string {
	return fmt.Sprintf("Movement{unit:%v speed:%.4f rot:%.0f}", m.unit, m.speed, m.rotationSign)
}
