package stream

import (
	"io"

	"github.com/almatuck/levee-go/llm"
)

// Forward drains the stream in a single pass, invoking onChunk for each
// fragment, and returns the terminal result. The one traversal supplies
// both the callbacks and the return value; the stream is consumed when
// Forward returns.
func (st *Stream) Forward(onChunk func(llm.StreamChunk)) (*llm.ChatResponse, error) {
	for {
		chunk, err := st.Recv()
		if err == io.EOF {
			return st.Result()
		}
		if err != nil {
			return nil, err
		}
		if onChunk != nil {
			onChunk(*chunk)
		}
	}
}
