// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rewrite

// 📊 ArtifactResult is the outcome for one code artifact
type ArtifactResult struct {
	FileName string
	Dynamic  int
	Static   int

	// Err is set when the artifact was left unchanged because its edits conflicted
	Err error

	// MapErr is set when the previous source map could not be composed
	MapErr error
}

// Count is the number of rewrites applied to the artifact
func (r ArtifactResult) Count() int {
	return r.Dynamic + r.Static
}

// 📋 Report summarizes one pass over a bundle, in bundle order
type Report struct {
	Artifacts []ArtifactResult
}

// Total is the number of rewrites applied across the bundle
func (r *Report) Total() int {
	total := 0
	for _, a := range r.Artifacts {
		total += a.Count()
	}
	return total
}

// Changed lists the artifacts whose text was rewritten
func (r *Report) Changed() []string {
	var out []string
	for _, a := range r.Artifacts {
		if a.Err == nil && a.Count() > 0 {
			out = append(out, a.FileName)
		}
	}
	return out
}

// Conflicts lists the artifacts left unchanged because of overlapping edits
func (r *Report) Conflicts() []ArtifactResult {
	var out []ArtifactResult
	for _, a := range r.Artifacts {
		if a.Err != nil {
			out = append(out, a)
		}
	}
	return out
}
