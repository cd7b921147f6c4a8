// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package fuzzy implements a Mamdani type-1 fuzzy inference engine.
//
// A model is built from four kinds of values:
//
//   - MembershipFunction: a shape (Triangular, Trapezoidal) mapping a crisp
//     value to a degree in [0,1]
//   - Input / Output: named variables with a closed domain
//   - Antecedent / Consequent: a membership function bound to a variable
//   - Rule: a conjunction of antecedents concluding one or more consequents
//
// Rules are collected in a Rulebase, which evaluates an Inputs snapshot:
//
//	                 ┌──────────────┐
//	Inputs ────────▶ │  fuzzify     │  Antecedent.Fire
//	                 ├──────────────┤
//	                 │  fire (min)  │  Rule.FiringStrength
//	                 ├──────────────┤
//	                 │  clip (min)  │  min(μ(x), strength)
//	                 ├──────────────┤
//	                 │  aggregate   │  pointwise max per Output
//	                 ├──────────────┤
//	                 │  centroid    │  Σ x·μ / Σ μ
//	                 └──────┬───────┘
//	                        ▼
//	                   Evaluation
//
// # Ownership Model
//
// Antecedents and consequents hold non-owning pointers to their variables and
// membership functions. Variables never carry the value being evaluated; the
// crisp values live in an Inputs snapshot that the caller builds per
// evaluation.
//
// # Thread Safety
//
// Membership functions, variables, rules and rulebases are read-only once the
// model is built and may be shared by any number of goroutines. Each
// concurrent evaluation needs its own Inputs. Rulebase.AddRule and
// Output.SetDiscretizationLevel are build-time operations and must not race
// with Evaluate.
//
// # Interval Mode
//
// IntervalEvaluator runs the rulebase twice, once with every input at its
// low bound and once at its high bound. This brackets the output by corner
// evaluation only: the inference mapping is generally non-monotonic, so the
// true extrema over the input box may lie at interior points.
package fuzzy
