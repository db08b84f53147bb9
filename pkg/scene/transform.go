package scene

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Transform is a Group whose subtree is placed by a spatial transform.
//
// Rotation is axis-angle: X, Y, Z hold the axis and W the angle in radians.
// The axis is normalized when a matrix is built; a zero axis means no
// rotation. The local matrix is
//
//	T(Position) · T(Pivot) · R(axis, angle) · T(-Pivot)
//
// so a child point is rotated about the pivot and then translated by
// Position. Accessors store values verbatim; no matrix is cached.
type Transform struct {
	Group

	typ      string
	position mgl64.Vec3
	rotation mgl64.Vec4
	pivot    mgl64.Vec3
}

// NewTransform returns an identity transform with no children.
func NewTransform(name string) *Transform {
	t := &Transform{Group: Group{nodeBase: newNodeBase(name)}}
	t.self = t
	return t
}

// Kind returns KindTransform.
func (t *Transform) Kind() NodeKind { return KindTransform }

// Accept calls v.ApplyTransform.
func (t *Transform) Accept(v Visitor) error { return v.ApplyTransform(t) }

// Type returns the opaque type tag.
func (t *Transform) Type() string { return t.typ }

// SetType sets the opaque type tag.
func (t *Transform) SetType(typ string) *Transform {
	t.typ = typ
	return t
}

// Position returns the translation.
func (t *Transform) Position() mgl64.Vec3 { return t.position }

// SetPosition sets the translation.
func (t *Transform) SetPosition(p mgl64.Vec3) *Transform {
	t.position = p
	return t
}

// Rotation returns the axis-angle rotation as stored.
func (t *Transform) Rotation() mgl64.Vec4 { return t.rotation }

// SetRotation sets the axis-angle rotation (axis in X, Y, Z; radians in W).
func (t *Transform) SetRotation(r mgl64.Vec4) *Transform {
	t.rotation = r
	return t
}

// SetAxisAngle is a convenience for SetRotation.
func (t *Transform) SetAxisAngle(axis mgl64.Vec3, radians float64) *Transform {
	return t.SetRotation(axis.Vec4(radians))
}

// Pivot returns the point rotation is applied about.
func (t *Transform) Pivot() mgl64.Vec3 { return t.pivot }

// SetPivot sets the point rotation is applied about.
func (t *Transform) SetPivot(p mgl64.Vec3) *Transform {
	t.pivot = p
	return t
}

// Quat returns the rotation as a unit quaternion.
func (t *Transform) Quat() mgl64.Quat {
	axis, angle, ok := t.axisAngle()
	if !ok {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatRotate(angle, axis)
}

func (t *Transform) axisAngle() (mgl64.Vec3, float64, bool) {
	axis := t.rotation.Vec3()
	if axis.Len() == 0 || t.rotation.W() == 0 {
		return mgl64.Vec3{}, 0, false
	}
	return axis.Normalize(), t.rotation.W(), true
}

// Matrix returns the local transform matrix.
func (t *Transform) Matrix() mgl64.Mat4 {
	m := mgl64.Translate3D(t.position.X(), t.position.Y(), t.position.Z())
	axis, angle, ok := t.axisAngle()
	if !ok {
		return m
	}
	p := t.pivot
	m = m.Mul4(mgl64.Translate3D(p.X(), p.Y(), p.Z()))
	m = m.Mul4(mgl64.HomogRotate3D(angle, axis))
	return m.Mul4(mgl64.Translate3D(-p.X(), -p.Y(), -p.Z()))
}

// WorldMatrix composes the local matrices of n and every Transform above it.
// For a non-transform node it is the matrix its content is drawn with.
func WorldMatrix(n Node) mgl64.Mat4 {
	m := mgl64.Ident4()
	for cur := n; cur != nil; cur = cur.Parent() {
		if t, ok := cur.(*Transform); ok {
			m = t.Matrix().Mul4(m)
		}
	}
	return m
}
