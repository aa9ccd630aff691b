package hwpdown

import (
	"bytes"
	"encoding/binary"
	"testing"
	"unicode/utf16"
)

// The binary fixtures used across the tests are synthesized in-process: a
// minimal compound-file writer plus encoders for FileHeader, DocInfo and
// body records. Every fixture stream is small enough to live in the
// ministream, which keeps the writer to one FAT sector.

const (
	cfbSectorSize     = 512
	cfbMiniSectorSize = 64
	cfbEndOfChain     = 0xFFFFFFFE
	cfbFreeSector     = 0xFFFFFFFF
	cfbFATSector      = 0xFFFFFFFD
	cfbNoStream       = 0xFFFFFFFF
)

// fixtureStream is one stream to place in a synthesized compound file.
// Storage is the parent storage name, or "" for the root.
type fixtureStream struct {
	storage string
	name    string
	data    []byte
}

type cfbEntry struct {
	name    string
	objType byte
	left    uint32
	right   uint32
	child   uint32
	start   uint32
	size    uint32
}

// writeCompoundFile synthesizes a v3 compound file holding the given
// streams, each under 4096 bytes so all stream data lives in the
// ministream. Sibling entries are chained through right pointers, which
// every reader walking the directory tree accepts.
func writeCompoundFile(t *testing.T, streams []fixtureStream) []byte {
	t.Helper()

	// Ministream and miniFAT.
	var miniFAT []uint32
	var miniData bytes.Buffer
	starts := make([]uint32, len(streams))
	for i, s := range streams {
		if len(s.data) >= 4096 {
			t.Fatalf("fixture stream %q too large for ministream: %d bytes", s.name, len(s.data))
		}
		if len(s.data) == 0 {
			starts[i] = cfbEndOfChain
			continue
		}
		starts[i] = uint32(len(miniFAT))
		n := (len(s.data) + cfbMiniSectorSize - 1) / cfbMiniSectorSize
		for j := 0; j < n-1; j++ {
			miniFAT = append(miniFAT, uint32(len(miniFAT))+1)
		}
		miniFAT = append(miniFAT, cfbEndOfChain)
		miniData.Write(s.data)
		for miniData.Len()%cfbMiniSectorSize != 0 {
			miniData.WriteByte(0)
		}
	}

	// Directory entries: root, then root-level items in input order, then
	// each storage's members.
	entries := []cfbEntry{{
		name:    "Root Entry",
		objType: 5,
		left:    cfbNoStream,
		right:   cfbNoStream,
		child:   cfbNoStream,
		start:   cfbEndOfChain,
		size:    uint32(miniData.Len()),
	}}

	var storageOrder []string
	storageIdx := make(map[string]int)
	var topLevel []int

	for i, s := range streams {
		if s.storage == "" {
			idx := len(entries)
			entries = append(entries, cfbEntry{
				name:    s.name,
				objType: 2,
				left:    cfbNoStream,
				right:   cfbNoStream,
				child:   cfbNoStream,
				start:   starts[i],
				size:    uint32(len(s.data)),
			})
			topLevel = append(topLevel, idx)
			continue
		}
		if _, ok := storageIdx[s.storage]; !ok {
			idx := len(entries)
			entries = append(entries, cfbEntry{
				name:    s.storage,
				objType: 1,
				left:    cfbNoStream,
				right:   cfbNoStream,
				child:   cfbNoStream,
				start:   cfbEndOfChain,
			})
			storageIdx[s.storage] = idx
			storageOrder = append(storageOrder, s.storage)
			topLevel = append(topLevel, idx)
		}
	}
	for _, storage := range storageOrder {
		var members []int
		for i, s := range streams {
			if s.storage != storage {
				continue
			}
			idx := len(entries)
			entries = append(entries, cfbEntry{
				name:    s.name,
				objType: 2,
				left:    cfbNoStream,
				right:   cfbNoStream,
				child:   cfbNoStream,
				start:   starts[i],
				size:    uint32(len(s.data)),
			})
			members = append(members, idx)
		}
		entries[storageIdx[storage]].child = uint32(members[0])
		for i := 0; i < len(members)-1; i++ {
			entries[members[i]].right = uint32(members[i+1])
		}
	}
	if len(topLevel) > 0 {
		entries[0].child = uint32(topLevel[0])
		for i := 0; i < len(topLevel)-1; i++ {
			entries[topLevel[i]].right = uint32(topLevel[i+1])
		}
	}

	// Sector layout: FAT, directory, miniFAT, ministream.
	const entriesPerSector = cfbSectorSize / 128
	dirSectors := (len(entries) + entriesPerSector - 1) / entriesPerSector
	miniFATSectors := (len(miniFAT)*4 + cfbSectorSize - 1) / cfbSectorSize
	miniStreamSectors := (miniData.Len() + cfbSectorSize - 1) / cfbSectorSize

	firstDir := uint32(1)
	firstMiniFAT := firstDir + uint32(dirSectors)
	firstMiniStream := firstMiniFAT + uint32(miniFATSectors)
	totalSectors := 1 + dirSectors + miniFATSectors + miniStreamSectors

	if miniData.Len() > 0 {
		entries[0].start = firstMiniStream
	}

	fat := make([]uint32, cfbSectorSize/4)
	for i := range fat {
		fat[i] = cfbFreeSector
	}
	fat[0] = cfbFATSector
	chain := func(first uint32, count int) {
		for i := 0; i < count-1; i++ {
			fat[first+uint32(i)] = first + uint32(i) + 1
		}
		if count > 0 {
			fat[first+uint32(count)-1] = cfbEndOfChain
		}
	}
	chain(firstDir, dirSectors)
	chain(firstMiniFAT, miniFATSectors)
	chain(firstMiniStream, miniStreamSectors)

	// Header.
	out := make([]byte, cfbSectorSize*(1+totalSectors))
	header := out[:cfbSectorSize]
	copy(header, compoundFileMagic)
	binary.LittleEndian.PutUint16(header[24:], 0x003E) // minor version
	binary.LittleEndian.PutUint16(header[26:], 0x0003) // major version
	binary.LittleEndian.PutUint16(header[28:], 0xFFFE) // byte order
	binary.LittleEndian.PutUint16(header[30:], 9)      // sector shift
	binary.LittleEndian.PutUint16(header[32:], 6)      // mini sector shift
	binary.LittleEndian.PutUint32(header[44:], 1)      // FAT sector count
	binary.LittleEndian.PutUint32(header[48:], firstDir)
	binary.LittleEndian.PutUint32(header[56:], 4096) // mini stream cutoff
	if miniFATSectors > 0 {
		binary.LittleEndian.PutUint32(header[60:], firstMiniFAT)
	} else {
		binary.LittleEndian.PutUint32(header[60:], cfbEndOfChain)
	}
	binary.LittleEndian.PutUint32(header[64:], uint32(miniFATSectors))
	binary.LittleEndian.PutUint32(header[68:], cfbEndOfChain) // first DIFAT sector
	for off := 76; off < cfbSectorSize; off += 4 {
		binary.LittleEndian.PutUint32(header[off:], cfbFreeSector)
	}
	binary.LittleEndian.PutUint32(header[76:], 0) // DIFAT[0]: FAT at sector 0

	sector := func(n uint32) []byte {
		off := cfbSectorSize * (1 + int(n))
		return out[off : off+cfbSectorSize]
	}

	// FAT sector.
	fatSector := sector(0)
	for i, v := range fat {
		binary.LittleEndian.PutUint32(fatSector[i*4:], v)
	}

	// Directory sectors.
	for i, e := range entries {
		buf := sector(firstDir + uint32(i/entriesPerSector))
		writeDirEntry(buf[(i%entriesPerSector)*128:], e)
	}
	for i := len(entries); i < dirSectors*entriesPerSector; i++ {
		buf := sector(firstDir + uint32(i/entriesPerSector))
		writeDirEntry(buf[(i%entriesPerSector)*128:], cfbEntry{
			left: cfbNoStream, right: cfbNoStream, child: cfbNoStream,
		})
	}

	// MiniFAT sectors.
	for i, v := range miniFAT {
		buf := sector(firstMiniFAT + uint32(i*4/cfbSectorSize))
		binary.LittleEndian.PutUint32(buf[(i*4)%cfbSectorSize:], v)
	}
	for i := len(miniFAT); i < miniFATSectors*cfbSectorSize/4; i++ {
		buf := sector(firstMiniFAT + uint32(i*4/cfbSectorSize))
		binary.LittleEndian.PutUint32(buf[(i*4)%cfbSectorSize:], cfbFreeSector)
	}

	// Ministream sectors.
	copy(out[cfbSectorSize*(1+int(firstMiniStream)):], miniData.Bytes())

	return out
}

func writeDirEntry(buf []byte, e cfbEntry) {
	units := utf16.Encode([]rune(e.name))
	for i, u := range units {
		binary.LittleEndian.PutUint16(buf[i*2:], u)
	}
	if e.name != "" {
		binary.LittleEndian.PutUint16(buf[64:], uint16((len(units)+1)*2))
	}
	buf[66] = e.objType
	buf[67] = 1 // black
	binary.LittleEndian.PutUint32(buf[68:], e.left)
	binary.LittleEndian.PutUint32(buf[72:], e.right)
	binary.LittleEndian.PutUint32(buf[76:], e.child)
	binary.LittleEndian.PutUint32(buf[116:], e.start)
	binary.LittleEndian.PutUint32(buf[120:], e.size)
}

// fileHeaderBytes encodes a FileHeader stream.
func fileHeaderBytes(major byte, attr uint32) []byte {
	fh := make([]byte, 256)
	copy(fh, hwpSignature)
	fh[32] = 0 // revision
	fh[33] = 0 // build
	fh[34] = 1 // minor
	fh[35] = major
	binary.LittleEndian.PutUint32(fh[36:], attr)
	return fh
}

// rec encodes one record. Payloads of 0xFFF bytes or more use the
// extended-size escape.
func rec(tag uint16, level int, payload []byte) []byte {
	header := uint32(tag) | uint32(level)<<10
	var buf []byte
	if len(payload) >= sizeEscape {
		header |= sizeEscape << 20
		buf = make([]byte, 8, 8+len(payload))
		binary.LittleEndian.PutUint32(buf, header)
		binary.LittleEndian.PutUint32(buf[4:], uint32(len(payload)))
	} else {
		header |= uint32(len(payload)) << 20
		buf = make([]byte, 4, 4+len(payload))
		binary.LittleEndian.PutUint32(buf, header)
	}
	return append(buf, payload...)
}

func u16payload(units ...uint16) []byte {
	buf := make([]byte, len(units)*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(buf[i*2:], u)
	}
	return buf
}

// textUnits encodes a string as UTF-16 code units.
func textUnits(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

// inlineCtrl emits the 8-unit encoding of an inline control: the code, six
// parameter units, the code again.
func inlineCtrl(code uint16) []uint16 {
	return []uint16{code, 0, 0, 0, 0, 0, 0, code}
}

func paraTextPayload(units ...[]uint16) []byte {
	var all []uint16
	for _, u := range units {
		all = append(all, u...)
	}
	return u16payload(all...)
}

func charShapePayload(sizePt100 int32, attr uint32) []byte {
	p := make([]byte, 50)
	binary.LittleEndian.PutUint32(p[42:], uint32(sizePt100))
	binary.LittleEndian.PutUint32(p[46:], attr)
	return p
}

func paraShapePayload(attr uint32) []byte {
	p := make([]byte, 12)
	binary.LittleEndian.PutUint32(p, attr)
	return p
}

func stylePayload(name, englishName string, paraShapeID, charShapeID uint16) []byte {
	var buf bytes.Buffer
	for _, s := range []string{name, englishName} {
		units := textUnits(s)
		buf.Write(u16payload(uint16(len(units))))
		buf.Write(u16payload(units...))
	}
	rest := make([]byte, 8)
	binary.LittleEndian.PutUint16(rest[4:], paraShapeID)
	binary.LittleEndian.PutUint16(rest[6:], charShapeID)
	buf.Write(rest)
	return buf.Bytes()
}

func paraHeaderPayload(paraShapeID uint16, styleID byte) []byte {
	p := make([]byte, 12)
	binary.LittleEndian.PutUint16(p[8:], paraShapeID)
	p[10] = styleID
	return p
}

func docPropsPayload(sectionCount uint16) []byte {
	p := make([]byte, 26)
	binary.LittleEndian.PutUint16(p, sectionCount)
	return p
}

// simpleDocInfo builds a DocInfo stream with one default character shape
// and one default paragraph shape.
func simpleDocInfo() []byte {
	var buf bytes.Buffer
	buf.Write(rec(TagDocumentProperties, 0, docPropsPayload(1)))
	buf.Write(rec(TagCharShape, 0, charShapePayload(1000, 0)))
	buf.Write(rec(TagParaShape, 0, paraShapePayload(0)))
	return buf.Bytes()
}

// simpleSection builds a body stream with one paragraph of plain text.
func simpleSection(text string) []byte {
	var buf bytes.Buffer
	buf.Write(rec(TagParaHeader, 0, paraHeaderPayload(0, 0)))
	buf.Write(rec(TagParaText, 1, paraTextPayload(textUnits(text))))
	buf.Write(rec(TagParaCharShape, 1, shapeRunPayload(shapeRun{Start: 0, ID: 0})))
	return buf.Bytes()
}

func shapeRunPayload(runs ...shapeRun) []byte {
	buf := make([]byte, len(runs)*8)
	for i, r := range runs {
		binary.LittleEndian.PutUint32(buf[i*8:], uint32(r.Start))
		binary.LittleEndian.PutUint32(buf[i*8+4:], uint32(r.ID))
	}
	return buf
}

// buildHWP synthesizes a complete binary document from a DocInfo stream
// and body section streams, compressing them when compressed is set.
func buildHWP(t *testing.T, compressed bool, docInfo []byte, sections ...[]byte) []byte {
	t.Helper()
	attr := uint32(0)
	if compressed {
		attr = attrCompressed
	}
	transform := func(data []byte) []byte {
		if !compressed {
			return data
		}
		out, err := compressStream(data)
		if err != nil {
			t.Fatalf("compress fixture stream: %v", err)
		}
		return out
	}

	streams := []fixtureStream{
		{name: fileHeaderStream, data: fileHeaderBytes(supportedMajorVersion, attr)},
		{name: docInfoStream, data: transform(docInfo)},
	}
	for i, sec := range sections {
		streams = append(streams, fixtureStream{
			storage: bodyTextStorage,
			name:    sectionStreamName(i)[len(bodyTextStorage)+1:],
			data:    transform(sec),
		})
	}
	return writeCompoundFile(t, streams)
}

// sectionFromRecords builds a section tree directly from encoded records,
// bypassing the container.
func sectionFromRecords(t *testing.T, records ...[]byte) (*Section, error) {
	t.Helper()
	var buf bytes.Buffer
	for _, r := range records {
		buf.Write(r)
	}
	return buildSection("BodyText/Section0", NewRecordScanner("BodyText/Section0", buf.Bytes()))
}
