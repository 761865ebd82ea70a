package corevm

// applyBlur runs the saturating 1-D diffusion kernel across [start, end]
// inclusive, in the style of the lib8tion scale8/blur1d pattern: each pixel
// bleeds a fraction of itself into its predecessor while keeping the rest.
// The traversal order is load-bearing: reversing it changes the result.
func applyBlur(fb *Framebuffer, start, end, amount byte) {
	keep := 255 - amount
	seep := amount / 2

	carryover := Pixel{}
	for i := int(start); i <= int(end); i++ {
		cur := fb.At(byte(i))
		part := cur.Scale(seep)
		cur = cur.Scale(keep)
		cur = cur.Add(carryover)
		if i != 0 {
			prev := fb.At(byte(i - 1))
			fb.Set(byte(i-1), prev.Add(part))
		}
		fb.Set(byte(i), cur)
		carryover = part
	}
}
