package decoder

// residue decodes the fine spectral detail left after the floor curve
// is subtracted, per spec.md §4.5. Types 0 and 1 decode directly per
// channel; type 2 first interleaves all live channels into one
// logical vector, decodes it as type 1, then de-interleaves.
//
// Grounded on the partitioned-VQ accumulation loop used by
// github.com/jfreymuth/vorbis (vendored copy seen in go-musicfox),
// the one pure-Go Vorbis decoder in the retrieval pack.
type residue struct {
	residueType     uint16
	begin, end      uint32
	partitionSize   uint32
	classifications uint8
	classbook       uint8
	cascade         []uint8
	books           [][8]int16
}

func (x *residue) readFrom(r *bitReader) error {
	x.residueType = r.Read16(16)
	if x.residueType > 2 {
		return newError(ErrUnsupportedConfiguration, "unsupported residue type")
	}
	x.begin = r.Read32(24)
	x.end = r.Read32(24)
	x.partitionSize = r.Read32(24) + 1
	x.classifications = r.Read8(6) + 1
	x.classbook = r.Read8(8)
	if x.begin > x.end {
		return newError(ErrMalformedHeader, "residue begin is greater than end")
	}

	x.cascade = make([]uint8, x.classifications)
	for i := range x.cascade {
		lowBits := r.Read8(3)
		var highBits uint8
		if r.ReadBool() {
			highBits = r.Read8(5)
		}
		x.cascade[i] = highBits*8 + lowBits
	}

	x.books = make([][8]int16, x.classifications)
	for i := range x.books {
		for j := 0; j < 8; j++ {
			if x.cascade[i]&(1<<uint(j)) != 0 {
				x.books[i][j] = int16(r.Read8(8))
			} else {
				x.books[i][j] = -1
			}
		}
	}
	if r.eop() {
		return newError(ErrMalformedHeader, "end of packet while reading residue setup")
	}
	return nil
}

// Decode accumulates the residue vectors for the live channels into
// out. doNotDecode[c] marks a channel that is not live for this
// residue's submap (e.g. its floor came back "unused"). n is the
// number of usable spectral bins (blocksize/2).
//
// A codebook read that runs past the end of the packet is a normal,
// spec-sanctioned early termination (spec.md §4.5, §7): whatever has
// already been accumulated into out is kept and decode simply stops.
func (x *residue) Decode(r *bitReader, doNotDecode []bool, n uint32, books []codebook, out [][]float32) {
	ch := uint32(len(doNotDecode))
	if x.residueType == 2 {
		decode := false
		for _, not := range doNotDecode {
			if !not {
				decode = true
				break
			}
		}
		if !decode {
			return
		}
		n *= ch
		ch = 1
		doNotDecode = []bool{false}
	}

	begin, end := x.begin, x.end
	if begin > n {
		begin = n
	}
	if end > n {
		end = n
	}
	classbook := &books[x.classbook]
	classWordsPerCodeword := uint32(classbook.dimensions)
	if end <= begin {
		return
	}
	nToRead := end - begin
	partitionsToRead := nToRead / x.partitionSize
	if partitionsToRead == 0 {
		return
	}

	cs := partitionsToRead + classWordsPerCodeword
	classifications := make([]uint32, ch*cs)

	for pass := 0; pass < 8; pass++ {
		partitionCount := uint32(0)
		for partitionCount < partitionsToRead {
			if pass == 0 {
				for j := uint32(0); j < ch; j++ {
					if doNotDecode[j] {
						continue
					}
					temp, err := classbook.DecodeScalar(r)
					if err != nil {
						return // end-of-packet: graceful stop (spec.md §4.5)
					}
					t := uint32(temp)
					for i := classWordsPerCodeword; i > 0; i-- {
						classifications[j*cs+(i-1)+partitionCount] = t % uint32(x.classifications)
						t /= uint32(x.classifications)
					}
				}
			}
			for classword := uint32(0); classword < classWordsPerCodeword && partitionCount < partitionsToRead; classword++ {
				for j := uint32(0); j < ch; j++ {
					if doNotDecode[j] {
						continue
					}
					vqclass := classifications[j*cs+partitionCount]
					vqbook := x.books[vqclass][pass]
					if vqbook == -1 {
						continue
					}
					book := &books[vqbook]
					offset := begin + partitionCount*x.partitionSize
					if err := decodeResiduePartition(x.residueType, r, book, out, int(j), offset, x.partitionSize); err != nil {
						return // end-of-packet: graceful stop
					}
				}
				partitionCount++
			}
		}
	}
}

func decodeResiduePartition(residueType uint16, r *bitReader, book *codebook, out [][]float32, ch int, offset, partitionSize uint32) error {
	switch residueType {
	case 0:
		step := partitionSize / uint32(book.dimensions)
		for i := uint32(0); i < step; i++ {
			tmp, err := book.DecodeVector(r)
			if err != nil {
				return err
			}
			for k, v := range tmp {
				out[ch][offset+i+uint32(k)*step] += v
			}
		}
	case 1:
		var i uint32
		for i < partitionSize {
			tmp, err := book.DecodeVector(r)
			if err != nil {
				return err
			}
			for _, v := range tmp {
				out[ch][offset+i] += v
				i++
			}
		}
	case 2:
		var i uint32
		nch := uint32(len(out))
		for i < partitionSize {
			tmp, err := book.DecodeVector(r)
			if err != nil {
				return err
			}
			for _, v := range tmp {
				out[(offset+i)%nch][(offset+i)/nch] += v
				i++
			}
		}
	}
	return nil
}
