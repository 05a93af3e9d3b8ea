// Copyright 2025 Forecast Consulting
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


// Package chunk splits document text into fixed-size overlapping windows
// for embedding and retrieval.
//
// Windows are Size characters long and consecutive windows share Overlap
// characters, so a passage falling on a window boundary still appears
// whole in at least one chunk. Offsets are byte offsets into the source
// text; the final window may be shorter than Size.
package chunk

import "iter"

const (
	// Size is the window length in bytes.
	Size = 1000

	// Overlap is the number of bytes shared by consecutive windows.
	Overlap = 200
)

// step is the distance between consecutive window starts.
const step = Size - Overlap

// Chunk is one window of the source text with its byte offsets.
// End is exclusive: Text == source[Start:End].
type Chunk struct {
	Text  string
	Start int
	End   int
}

// Split yields the overlapping windows of text in order.
// Empty text yields nothing. Iteration stops once a window reaches the
// end of the text, so no window is fully contained in its predecessor.
func Split(text string) iter.Seq[Chunk] {
	return func(yield func(Chunk) bool) {
		for start := 0; start < len(text); start += step {
			end := min(start+Size, len(text))
			if !yield(Chunk{Text: text[start:end], Start: start, End: end}) {
				return
			}
			if end == len(text) {
				return
			}
		}
	}
}

// All returns the windows of text as a slice.
func All(text string) []Chunk {
	var chunks []Chunk
	for c := range Split(text) {
		chunks = append(chunks, c)
	}
	return chunks
}

// Count returns the number of windows Split yields for a text of the
// given length, without materializing them.
func Count(length int) int {
	if length <= 0 {
		return 0
	}
	if length <= Size {
		return 1
	}
	// One window per step, plus one for the remainder.
	return (length - Overlap + step - 1) / step
}
