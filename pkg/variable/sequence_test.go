// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package variable

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Variable_01(t *testing.T) {
	_, err := NewRange("x", 0)
	require.ErrorIs(t, err, ErrInvalidDomain)
	//
	_, err = NewLabelled("y")
	require.ErrorIs(t, err, ErrInvalidDomain)
	//
	_, err = NewLabelled("y", "a", "a")
	require.Error(t, err)
}

func Test_Variable_02(t *testing.T) {
	v, err := NewLabelled("weather", "sun", "rain", "snow")
	require.NoError(t, err)
	assert.Equal(t, uint(3), v.DomainSize())
	assert.Equal(t, "rain", v.Label(1))
	//
	i, ok := v.Index("snow")
	assert.True(t, ok)
	assert.Equal(t, uint(2), i)
	//
	r := MustRange("n", 4)
	assert.Equal(t, "3", r.Label(3))
	assert.Panics(t, func() { r.Label(4) })
}

func Test_Sequence_01(t *testing.T) {
	x, y, z := MustRange("x", 2), MustRange("y", 3), MustRange("z", 4)
	seq := MustSequence(x, y, z)
	//
	assert.Equal(t, uint(3), seq.Len())
	assert.True(t, seq.Contains(y))
	//
	pos, ok := seq.Pos(z)
	assert.True(t, ok)
	assert.Equal(t, uint(2), pos)
	//
	n, err := seq.DomainSize()
	require.NoError(t, err)
	assert.Equal(t, uint64(24), n)
	//
	assert.ErrorIs(t, seq.Insert(x), ErrDuplicate)
}

func Test_Sequence_02(t *testing.T) {
	x, y, z := MustRange("x", 2), MustRange("y", 3), MustRange("z", 4)
	seq := MustSequence(x, y, z)
	vars := seq.Vars()
	//
	require.NoError(t, seq.Erase(y))
	assert.Equal(t, "(x,z)", seq.String())
	// Erase must not disturb a previously obtained slice
	assert.Equal(t, []Variable{x, y, z}, vars)
	//
	pos, _ := seq.Pos(z)
	assert.Equal(t, uint(1), pos)
	assert.False(t, seq.Contains(y))
	assert.True(t, errors.Is(seq.Erase(y), ErrMissing))
}

func Test_Sequence_03(t *testing.T) {
	x, y, z, w := MustRange("x", 2), MustRange("y", 3), MustRange("z", 4), MustRange("w", 5)
	a := MustSequence(x, y, z)
	b := MustSequence(z, w, x)
	//
	u := a.Union(b)
	assert.Equal(t, "(x,y,z,w)", u.String())
	//
	d := a.Difference(b)
	assert.Equal(t, "(y)", d.String())
	//
	assert.True(t, a.Intersects(b))
	assert.False(t, d.Intersects(b))
	// Union does not modify either operand
	assert.Equal(t, uint(3), a.Len())
	assert.Equal(t, uint(3), b.Len())
}

func Test_Sequence_04(t *testing.T) {
	x, y := MustRange("x", 2), MustRange("y", 3)
	a := MustSequence(x, y)
	b := a.Clone()
	//
	require.NoError(t, b.Erase(x))
	assert.True(t, a.Contains(x))
	assert.False(t, a.Equals(b))
	//
	c := MustSequence(y, x)
	assert.False(t, a.Equals(c))
	assert.True(t, a.SameSet(c))
}

func Test_Sequence_05(t *testing.T) {
	var vars []Variable
	// 2^64 overflows
	for i := 0; i < 64; i++ {
		vars = append(vars, MustRange("b", 2))
	}
	//
	seq := MustSequence(vars...)
	_, err := seq.DomainSize()
	assert.ErrorIs(t, err, ErrOverflow)
	//
	_, err = MulSizes(math.MaxUint64, 2)
	assert.ErrorIs(t, err, ErrOverflow)
	//
	_, err = AddSizes(math.MaxUint64, 1)
	assert.ErrorIs(t, err, ErrOverflow)
	//
	empty := MustSequence()
	n, err := empty.DomainSize()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)
}

func Test_Variable_03(t *testing.T) {
	var (
		empty = &emptyVar{"e"}
		x     = MustRange("x", 2)
	)
	//
	_, err := NewRange("x", 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewLabelled("y", "a", "a")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	// Empty domains are rejected however the variable is implemented
	_, err = NewSequence(x, empty)
	assert.ErrorIs(t, err, ErrInvalidDomain)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	//
	seq := MustSequence(x)
	assert.ErrorIs(t, seq.Insert(empty), ErrInvalidArgument)
	assert.Equal(t, uint(1), seq.Len())
	assert.False(t, seq.Contains(empty))
}

func Test_Sequence_06(t *testing.T) {
	x, y, z := MustRange("x", 2), MustRange("y", 3), MustRange("z", 4)
	// Inserting into a copy leaves the original alone
	a := MustSequence(x)
	b := a
	require.NoError(t, b.Insert(y))
	assert.Equal(t, uint(1), a.Len())
	assert.False(t, a.Contains(y))
	assert.True(t, b.Contains(y))
	// Erasing from a copy leaves the original alone
	c := MustSequence(x, y)
	d := c
	require.NoError(t, d.Erase(x))
	assert.True(t, c.Contains(x))
	assert.Equal(t, uint(2), c.Len())
	assert.Equal(t, "(y)", d.String())
	// Appending to copies sharing spare capacity
	e := MustSequence(x)
	f, g := e, e
	require.NoError(t, f.Insert(y))
	require.NoError(t, g.Insert(z))
	assert.Equal(t, "(x,y)", f.String())
	assert.Equal(t, "(x,z)", g.String())
	assert.False(t, f.Contains(z))
	// Set algebra over the originals is unaffected
	assert.Equal(t, "(x,y)", a.Union(c).String())
	assert.Equal(t, "(y)", c.Difference(a).String())
}

// A variable implementation which (wrongly) reports an empty domain.
type emptyVar struct {
	name string
}

func (p *emptyVar) Name() string {
	return p.name
}

func (p *emptyVar) DomainSize() uint {
	return 0
}

func (p *emptyVar) Label(i uint) string {
	panic("empty domain")
}

func (p *emptyVar) String() string {
	return p.name
}
