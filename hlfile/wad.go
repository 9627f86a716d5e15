package hlfile

import (
	"bytes"
	"encoding/binary"
	"io"
)

const (
	// Directory entry type of a miptex lump
	WADTypeMipTex = 0x43

	wadEntrySize = 32
	maxWADLumps  = 1 << 16
)

var wadMagic = []byte("WAD3")

type WADHeader struct {
	Magic     [4]byte // magic number ("WAD3")
	NumLumps  uint32  // number of directory entries
	DirOffset uint32  // offset of the directory from the beginning of the file
}

type WADEntry struct {
	Offset     uint32 // offset of the lump from the beginning of the file
	DiskSize   uint32
	Size       uint32 // uncompressed size
	Type       uint8
	Compressed bool
	Padding    [2]uint8
	Name       [16]byte
}

func (e WADEntry) EntryName() string {
	return cString(e.Name[:])
}

type WAD struct {
	Header  WADHeader
	Entries []WADEntry
}

func LoadWAD(r io.ReaderAt) (*WAD, error) {
	header := WADHeader{}
	headerReader := io.NewSectionReader(r, 0, int64(binary.Size(header)))
	if err := binary.Read(headerReader, binary.LittleEndian, &header); err != nil {
		return nil, formatErrorf("WAD", "short header: %v", err)
	}

	// Verify format
	if !bytes.Equal(wadMagic, header.Magic[:]) {
		return nil, formatErrorf("WAD", "wrong magic %q", header.Magic[:])
	}

	if header.NumLumps > maxWADLumps {
		return nil, formatErrorf("WAD", "implausible lump count %d", header.NumLumps)
	}

	dirLength := int64(header.NumLumps) * wadEntrySize
	entries := make([]WADEntry, header.NumLumps)
	dirReader := io.NewSectionReader(r, int64(header.DirOffset), dirLength)
	if err := binary.Read(dirReader, binary.LittleEndian, entries); err != nil {
		return nil, formatErrorf("WAD", "directory of %d entries is truncated: %v", header.NumLumps, err)
	}

	logger.Debug().Uint32("lumps", header.NumLumps).Msg("WAD directory loaded")

	return &WAD{Header: header, Entries: entries}, nil
}

// Offsets of every miptex lump, in directory order
func (w *WAD) TextureOffsets() []int64 {
	offsets := make([]int64, 0, len(w.Entries))
	for _, entry := range w.Entries {
		if entry.Type != WADTypeMipTex {
			logger.Debug().Str("name", entry.EntryName()).Uint8("type", entry.Type).Msg("Skipping non-texture lump")
			continue
		}
		offsets = append(offsets, int64(entry.Offset))
	}
	return offsets
}
