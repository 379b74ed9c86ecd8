package mot

// runningPlayers generates boxes of three players moving across the frame:
// two jog in opposite directions along the same line, third one stands still.
func runningPlayers(frames int) [][]Rectangle {
	out := make([][]Rectangle, frames)
	for i := 0; i < frames; i++ {
		f := float64(i)
		out[i] = []Rectangle{
			{X: 100 + 4*f, Y: 300, Width: 30, Height: 70},
			{X: 900 - 4*f, Y: 500, Width: 30, Height: 70},
			{X: 600, Y: 120, Width: 28, Height: 66},
		}
	}
	return out
}

func toBoxBlobs(rects []Rectangle, class Class, confidence float64) []*BoxBlob {
	blobs := make([]*BoxBlob, len(rects))
	for i, rect := range rects {
		blobs[i] = NewBoxBlob(rect, class, confidence)
	}
	return blobs
}
