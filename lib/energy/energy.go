/*package energy computes the kinetic and gravitational potential energy of a
set of particles. These are used as conservation diagnostics alongside the
force calculations.*/
package energy

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/bhforce/lib/force"
	"github.com/phil-mansfield/bhforce/lib/tree"
)

// Kinetic returns 1/2 sum_i m_i |v_i|^2.
func Kinetic(v []r3.Vec, m []float64) (float64, error) {
	if len(v) != len(m) {
		return 0, fmt.Errorf("Given %d velocities but %d masses.", len(v), len(m))
	}

	ke := 0.0
	for i := range v {
		ke += m[i] * r3.Norm2(v[i])
	}
	return ke / 2, nil
}

// PotentialDirect returns the softened pairwise potential energy,
// -sum_i sum_{j>i} G m_i m_j / sqrt(r_ij^2 + eps^2). It's O(N^2).
func PotentialDirect(x []r3.Vec, m []float64, G, eps float64) (float64, error) {
	if len(x) != len(m) {
		return 0, fmt.Errorf("Given %d positions but %d masses.", len(x), len(m))
	}

	eps2 := eps * eps
	u := 0.0
	for i := range x {
		ui := 0.0
		for j := i + 1; j < len(x); j++ {
			r2 := r3.Norm2(r3.Sub(x[i], x[j]))
			ui += m[j] / math.Sqrt(r2+eps2)
		}
		u -= G * m[i] * ui
	}
	return u, nil
}

// PotentialTree returns the potential energy of the particles in t,
// 1/2 sum_i m_i phi_i, where each phi_i is the Barnes-Hut potential from
// force.Potential. It's O(N log N) and agrees with PotentialDirect as
// p.Theta -> 0. Masses needn't be equal.
func PotentialTree(t *tree.Tree, p force.Params) (float64, error) {
	u := 0.0
	for _, q := range t.Particles() {
		phi, err := force.Potential(t, q.ID, p)
		if err != nil {
			return 0, err
		}
		u += q.M * phi
	}
	return u / 2, nil
}

// Total returns the sum of kinetic and potential energy.
func Total(ke, pe float64) float64 { return ke + pe }
