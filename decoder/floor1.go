package decoder

import "sort"

// floor1 synthesizes a piecewise-linear log-magnitude curve from a
// small set of (X, Y) control points, per spec.md §4.3. It is the
// floor type almost every real Vorbis I encoder uses.
type floor1 struct {
	partitionClassList []uint8 // per partition: which class
	classDimensions     []uint8
	classSubclasses     []uint8
	classMasterbooks    []uint8
	subclassBooks       [][]int16 // [class][subclass] codebook index, -1 = none

	multiplier int // 1..4
	xList      []int
}

type floor1Data struct {
	unused bool
	y      []int32 // raw decoded Y values, indexed the same as xList
}

func (f *floor1) readFrom(r *bitReader) error {
	partitions := int(r.Read8(5))
	f.partitionClassList = make([]uint8, partitions)
	maxClass := -1
	for i := range f.partitionClassList {
		c := r.Read8(4)
		f.partitionClassList[i] = c
		if int(c) > maxClass {
			maxClass = int(c)
		}
	}
	classCount := maxClass + 1
	f.classDimensions = make([]uint8, classCount)
	f.classSubclasses = make([]uint8, classCount)
	f.classMasterbooks = make([]uint8, classCount)
	f.subclassBooks = make([][]int16, classCount)
	for i := 0; i < classCount; i++ {
		f.classDimensions[i] = r.Read8(3) + 1
		f.classSubclasses[i] = r.Read8(2)
		if f.classSubclasses[i] != 0 {
			f.classMasterbooks[i] = r.Read8(8)
		}
		n := 1 << f.classSubclasses[i]
		f.subclassBooks[i] = make([]int16, n)
		for j := 0; j < n; j++ {
			f.subclassBooks[i][j] = int16(r.Read8(8)) - 1
		}
	}
	f.multiplier = int(r.Read8(2)) + 1
	rangeBits := int(r.Read8(4))

	f.xList = []int{0, 1 << uint(rangeBits)}
	for _, class := range f.partitionClassList {
		dim := int(f.classDimensions[class])
		for j := 0; j < dim; j++ {
			f.xList = append(f.xList, int(r.Read(rangeBits)))
		}
	}
	if len(f.xList) > 256 {
		return newError(ErrMalformedHeader, "floor 1 has more than 256 X positions")
	}
	if r.eop() {
		return newError(ErrMalformedHeader, "end of packet while reading floor 1 setup")
	}
	return nil
}

var floor1Range = [4]int{256, 128, 64, 32}

func (f *floor1) Decode(r *bitReader, books []codebook, _ uint32) interface{} {
	if !r.ReadBool() {
		return floor1Data{unused: true}
	}
	quantQ := floor1Range[f.multiplier-1]
	bits := ilog(quantQ - 1)
	y := make([]int32, len(f.xList))
	y[0] = int32(r.Read(bits))
	y[1] = int32(r.Read(bits))
	offset := 2
	for _, class := range f.partitionClassList {
		dim := int(f.classDimensions[class])
		cbits := int(f.classSubclasses[class])
		csub := (1 << uint(cbits)) - 1
		cval := 0
		if cbits > 0 {
			v, err := books[f.classMasterbooks[class]].DecodeScalar(r)
			if err != nil {
				// A failed read leaves the curve "unused"; when the
				// failure was end of packet, the caller sees the
				// reader's overrun flag and reports ErrEndOfPacket.
				return floor1Data{unused: true}
			}
			cval = v
		}
		for j := 0; j < dim; j++ {
			book := f.subclassBooks[class][cval&csub]
			cval >>= uint(cbits)
			if book >= 0 {
				v, err := books[book].DecodeScalar(r)
				if err != nil {
					return floor1Data{unused: true}
				}
				y[offset+j] = int32(v)
			} else {
				y[offset+j] = 0
			}
		}
		offset += dim
	}
	return floor1Data{y: y}
}

func (f *floor1) Apply(out []float32, data interface{}) {
	fd := data.(floor1Data)
	if fd.unused || fd.y == nil {
		for i := range out {
			out[i] = 0
		}
		return
	}

	order := make([]int, len(f.xList))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return f.xList[order[a]] < f.xList[order[b]] })

	quantQ := floor1Range[f.multiplier-1]
	finalY := make([]int32, len(f.xList))
	step2 := make([]bool, len(f.xList))
	finalY[0] = fd.y[0]
	finalY[1] = fd.y[1]
	step2[0] = true
	step2[1] = true

	lowNeighbor := func(x int) int {
		n := -1
		for i := 0; i < x; i++ {
			if f.xList[i] < f.xList[x] && (n == -1 || f.xList[i] > f.xList[n]) {
				n = i
			}
		}
		return n
	}
	highNeighbor := func(x int) int {
		n := -1
		for i := 0; i < x; i++ {
			if f.xList[i] > f.xList[x] && (n == -1 || f.xList[i] < f.xList[n]) {
				n = i
			}
		}
		return n
	}

	for i := 2; i < len(f.xList); i++ {
		low := lowNeighbor(i)
		high := highNeighbor(i)
		predicted := renderPoint(f.xList[low], int(finalY[low]), f.xList[high], int(finalY[high]), f.xList[i])
		val := int(fd.y[i])
		highroom := quantQ - predicted
		lowroom := predicted
		var room int
		if highroom < lowroom {
			room = highroom * 2
		} else {
			room = lowroom * 2
		}
		if val != 0 {
			step2[low] = true
			step2[high] = true
			step2[i] = true
			if val >= room {
				if highroom > lowroom {
					finalY[i] = int32(val - lowroom + predicted)
				} else {
					finalY[i] = int32(predicted - val + highroom - 1)
				}
			} else {
				if val&1 == 1 {
					finalY[i] = int32(predicted - (val+1)/2)
				} else {
					finalY[i] = int32(predicted + val/2)
				}
			}
		} else {
			step2[i] = false
			finalY[i] = int32(predicted)
		}
	}

	for i := range out {
		out[i] = 0
	}
	prev := -1
	for _, idx := range order {
		if !step2[idx] {
			continue
		}
		if prev >= 0 {
			renderLine(f.xList[prev], int(finalY[prev]), f.xList[idx], int(finalY[idx]), out, f.multiplier)
		}
		prev = idx
	}
}

// renderPoint predicts the Y value at x given the two bracketing
// posted points, per spec.md §4.3.
func renderPoint(x0, y0, x1, y1, x int) int {
	dy := y1 - y0
	adx := x1 - x0
	ady := dy
	if ady < 0 {
		ady = -ady
	}
	err := ady * (x - x0)
	off := err / adx
	if dy < 0 {
		return y0 - off
	}
	return y0 + off
}

// renderLine draws one segment of the floor curve with the exact
// integer-arithmetic Bresenham-style accumulator spec.md §4.3 and §8
// require: any deviation from this accumulation order drifts audibly.
// Values are dequantized through floor1_inverse_db_table as they are
// written.
func renderLine(x0, y0, x1, y1 int, out []float32, multiplier int) {
	dy := y1 - y0
	adx := x1 - x0
	ady := dy
	if ady < 0 {
		ady = -ady
	}
	base := dy / adx
	sy := base + 1
	if dy < 0 {
		sy = base - 1
	}
	ady -= iabs(base) * adx
	x := x0
	y := y0
	err := 0
	n := len(out)
	if x >= 0 && x < n {
		out[x] = dequantFloor1(y, multiplier)
	}
	for x = x0 + 1; x < x1; x++ {
		err += ady
		if err >= adx {
			err -= adx
			y += sy
		} else {
			y += base
		}
		if x >= 0 && x < n {
			out[x] = dequantFloor1(y, multiplier)
		}
	}
}

func iabs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func dequantFloor1(y, multiplier int) float32 {
	idx := y * multiplier
	if idx < 0 {
		idx = 0
	} else if idx > 255 {
		idx = 255
	}
	return floor1InverseDBTable[idx]
}

// floor1InverseDBTable converts an 8-bit quantized dB magnitude into a
// linear amplitude multiplier. This is the fixed table from the
// Vorbis I reference decoder (spec.md §4.3); it is not derivable from
// a simple formula and must match the reference exactly.
var floor1InverseDBTable = [256]float32{
	1.0649863e-07, 1.1341951e-07, 1.2079015e-07, 1.2863978e-07,
	1.3699951e-07, 1.4590251e-07, 1.5538408e-07, 1.6548181e-07,
	1.7623575e-07, 1.8768855e-07, 1.9988561e-07, 2.1287530e-07,
	2.2670913e-07, 2.4144197e-07, 2.5713223e-07, 2.7384213e-07,
	2.9163793e-07, 3.1059021e-07, 3.3077411e-07, 3.5226968e-07,
	3.7516214e-07, 3.9954229e-07, 4.2550680e-07, 4.5315863e-07,
	4.8260743e-07, 5.1396998e-07, 5.4737065e-07, 5.8294187e-07,
	6.2082472e-07, 6.6116941e-07, 7.0413592e-07, 7.4989464e-07,
	7.9862701e-07, 8.5052630e-07, 9.0579828e-07, 9.6466216e-07,
	1.0273513e-06, 1.0941144e-06, 1.1652161e-06, 1.2409384e-06,
	1.3215816e-06, 1.4074654e-06, 1.4989305e-06, 1.5963394e-06,
	1.7000785e-06, 1.8105592e-06, 1.9282195e-06, 2.0535261e-06,
	2.1869758e-06, 2.3290978e-06, 2.4804557e-06, 2.6416497e-06,
	2.8133190e-06, 2.9961443e-06, 3.1908506e-06, 3.3982101e-06,
	3.6190449e-06, 3.8542308e-06, 4.1047004e-06, 4.3714470e-06,
	4.6555282e-06, 4.9580707e-06, 5.2802740e-06, 5.6234160e-06,
	5.9888572e-06, 6.3780469e-06, 6.7925283e-06, 7.2339451e-06,
	7.7040476e-06, 8.2047000e-06, 8.7378876e-06, 9.3057248e-06,
	9.9104632e-06, 1.0554501e-05, 1.1240392e-05, 1.1970856e-05,
	1.2748789e-05, 1.3577278e-05, 1.4459606e-05, 1.5399272e-05,
	1.6400004e-05, 1.7465768e-05, 1.8600792e-05, 1.9809576e-05,
	2.1096914e-05, 2.2467911e-05, 2.3928002e-05, 2.5482978e-05,
	2.7139006e-05, 2.8902651e-05, 3.0780908e-05, 3.2781225e-05,
	3.4911534e-05, 3.7180282e-05, 3.9596466e-05, 4.2169667e-05,
	4.4910090e-05, 4.7828601e-05, 5.0936773e-05, 5.4246931e-05,
	5.7772202e-05, 6.1526565e-05, 6.5524908e-05, 6.9783085e-05,
	7.4317983e-05, 7.9147585e-05, 8.4291040e-05, 8.9768747e-05,
	9.5602426e-05, 1.0181521e-04, 1.0843174e-04, 1.1547824e-04,
	1.2298267e-04, 1.3097477e-04, 1.3948625e-04, 1.4855085e-04,
	1.5820453e-04, 1.6848555e-04, 1.7943469e-04, 1.9109536e-04,
	2.0351382e-04, 2.1673929e-04, 2.3082423e-04, 2.4582449e-04,
	2.6179955e-04, 2.7881276e-04, 2.9693158e-04, 3.1622787e-04,
	3.3677814e-04, 3.5866388e-04, 3.8197188e-04, 4.0679456e-04,
	4.3323036e-04, 4.6138411e-04, 4.9136745e-04, 5.2329927e-04,
	5.5730621e-04, 5.9352311e-04, 6.3209358e-04, 6.7317058e-04,
	7.1691700e-04, 7.6350630e-04, 8.1312324e-04, 8.6596457e-04,
	9.2223983e-04, 9.8217216e-04, 1.0459992e-03, 1.1139742e-03,
	1.1863665e-03, 1.2634633e-03, 1.3455702e-03, 1.4330129e-03,
	1.5261382e-03, 1.6253153e-03, 1.7309374e-03, 1.8434235e-03,
	1.9632195e-03, 2.0908006e-03, 2.2266726e-03, 2.3713743e-03,
	2.5254795e-03, 2.6895994e-03, 2.8643847e-03, 3.0505286e-03,
	3.2487691e-03, 3.4598925e-03, 3.6847358e-03, 3.9241906e-03,
	4.1792066e-03, 4.4507950e-03, 4.7400328e-03, 5.0480668e-03,
	5.3761186e-03, 5.7254891e-03, 6.0975636e-03, 6.4938176e-03,
	6.9158225e-03, 7.3652516e-03, 7.8438871e-03, 8.3536271e-03,
	8.8964928e-03, 9.4746259e-03, 1.0090295e-02, 1.0745894e-02,
	1.1443906e-02, 1.2186935e-02, 1.2977690e-02, 1.3819039e-02,
	1.4713957e-02, 1.5665590e-02, 1.6677244e-02, 1.7752394e-02,
	1.8894686e-02, 2.0107954e-02, 2.1396207e-02, 2.2763657e-02,
	2.4214723e-02, 2.5755048e-02, 2.7389523e-02, 2.9123287e-02,
	3.0962727e-02, 3.2914491e-02, 3.4985505e-02, 3.7182989e-02,
	3.9514475e-02, 4.1987821e-02, 4.4611233e-02, 4.7393273e-02,
	5.0343893e-02, 5.3473463e-02, 5.6792794e-02, 6.0314161e-02,
	6.4050313e-02, 6.8015457e-02, 7.2224298e-02, 7.6693068e-02,
	8.1439572e-02, 8.6482256e-02, 9.1841250e-02, 9.7538406e-02,
	1.0359733e-01, 1.1004322e-01, 1.1690341e-01, 1.2420733e-01,
	1.3198658e-01, 1.4027461e-01, 1.4910785e-01, 1.5852489e-01,
	1.6856813e-01, 1.7928316e-01, 1.9071915e-01, 2.0292971e-01,
	2.1597276e-01, 2.2991059e-01, 2.4481019e-01, 2.6074346e-01,
	2.7778734e-01, 2.9602520e-01, 3.1554687e-01, 3.3645000e-01,
	3.5884077e-01, 3.8283464e-01, 4.0855680e-01, 4.3614373e-01,
	4.6574390e-01, 4.9752031e-01, 5.3166165e-01, 5.6837412e-01,
	6.0788250e-01, 6.5043234e-01, 6.9628716e-01, 7.4572878e-01,
	7.9906001e-01, 8.5661406e-01, 9.1875581e-01, 9.8587341e-01,
}
