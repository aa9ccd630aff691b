package hwpdown

// Record tag ids. The HWP 5 format numbers its record tags from a common
// base; DocInfo and body-section streams use disjoint ranges.
const tagBegin = 0x010

// DocInfo stream tags.
const (
	TagDocumentProperties uint16 = tagBegin + 0
	TagIDMappings         uint16 = tagBegin + 1
	TagBinData            uint16 = tagBegin + 2
	TagFaceName           uint16 = tagBegin + 3
	TagBorderFill         uint16 = tagBegin + 4
	TagCharShape          uint16 = tagBegin + 5
	TagTabDef             uint16 = tagBegin + 6
	TagNumbering          uint16 = tagBegin + 7
	TagBullet             uint16 = tagBegin + 8
	TagParaShape          uint16 = tagBegin + 9
	TagStyle              uint16 = tagBegin + 10
)

// Body section stream tags.
const (
	TagParaHeader     uint16 = tagBegin + 50
	TagParaText       uint16 = tagBegin + 51
	TagParaCharShape  uint16 = tagBegin + 52
	TagParaLineSeg    uint16 = tagBegin + 53
	TagParaRangeTag   uint16 = tagBegin + 54
	TagCtrlHeader     uint16 = tagBegin + 55
	TagListHeader     uint16 = tagBegin + 56
	TagPageDef        uint16 = tagBegin + 57
	TagFootnoteShape  uint16 = tagBegin + 58
	TagPageBorderFill uint16 = tagBegin + 59
	TagShapeComponent uint16 = tagBegin + 60
	TagTable          uint16 = tagBegin + 61
)

// Control ids carried in the first four bytes of a CTRL_HEADER payload.
// Stored as a packed big-endian four-character code.
const (
	ctrlTable          uint32 = 0x74626c20 // "tbl "
	ctrlGenShapeObject uint32 = 0x67736f20 // "gso "
	ctrlSectionDef     uint32 = 0x73656364 // "secd"
	ctrlColumnDef      uint32 = 0x636f6c64 // "cold"
	ctrlHeaderArea     uint32 = 0x68656164 // "head"
	ctrlFooterArea     uint32 = 0x666f6f74 // "foot"
)
