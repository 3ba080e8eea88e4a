package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyScalars(t *testing.T) {
	assert.Equal(t, Class{Base: HardwareInteger}, Classify(Int(3)))
	assert.Equal(t, Class{Base: ExactRational}, Classify(NewRational(1, 3)))
	assert.Equal(t, Class{Base: IrrationalConstant}, Classify(Irrational{Name: "pi"}))
	assert.Equal(t, Class{Base: AlreadyFloating}, Classify(NewFloat64(1.5)))
	assert.Equal(t, Class{Base: Opaque}, Classify(Str("path")))
	assert.Equal(t, Class{Base: Opaque}, Classify(Bool(true)))
}

func TestClassifyComplex(t *testing.T) {
	c := Classify(Complex{Re: Int(1), Im: Int(2)})
	assert.Equal(t, Class{Base: HardwareInteger, Complex: true}, c)

	// Exactness is sticky upward: int + rational joins to rational.
	c = Classify(Complex{Re: Int(1), Im: NewRational(1, 2)})
	assert.Equal(t, Class{Base: ExactRational, Complex: true}, c)

	// A floating part poisons the whole shape.
	c = Classify(Complex{Re: Int(1), Im: NewFloat64(0.5)})
	assert.Equal(t, Class{Base: AlreadyFloating, Complex: true}, c)
}

func TestClassifyArray(t *testing.T) {
	arr := Array{Dims: []int{3}, Elems: []Value{Int(1), NewRational(1, 2), Int(3)}}
	assert.Equal(t, Class{Base: ExactRational, Array: true}, Classify(arr))

	mixed := Array{Dims: []int{2}, Elems: []Value{Int(1), NewFloat32(2)}}
	assert.Equal(t, Class{Base: AlreadyFloating, Array: true}, Classify(mixed))

	irr := Array{Dims: []int{2}, Elems: []Value{Irrational{Name: "pi"}, Int(2)}}
	assert.Equal(t, Class{Base: IrrationalConstant, Array: true}, Classify(irr))

	empty := Array{Dims: []int{0}, Elems: nil}
	assert.Equal(t, Class{Base: Opaque, Array: true}, Classify(empty))

	// Nested arrays are not a promotable shape.
	nested := Array{Dims: []int{1}, Elems: []Value{Array{Dims: []int{1}, Elems: []Value{Int(1)}}}}
	assert.Equal(t, Class{Base: Opaque, Array: true}, Classify(nested))
}

func TestPromotableAndExact(t *testing.T) {
	assert.True(t, Classify(Int(1)).Promotable())
	assert.True(t, Classify(NewRational(1, 3)).Promotable())
	assert.True(t, Classify(Irrational{Name: "e"}).Promotable())
	assert.False(t, Classify(NewFloat64(1)).Promotable())
	assert.False(t, Classify(Str("s")).Promotable())

	assert.True(t, Classify(Int(1)).Exact())
	assert.True(t, Classify(NewRational(1, 3)).Exact())
	assert.False(t, Classify(Irrational{Name: "e"}).Exact())
	assert.False(t, Classify(NewFloat64(1)).Exact())
}
