package format

type (
	TypeCode        uint8
	CompressionType uint8
)

// Value type codes. Exactly one precedes every encoded value.
const (
	TypeNull         TypeCode = 0x00 // TypeNull has no payload.
	TypeFalse        TypeCode = 0x01 // TypeFalse has no payload.
	TypeTrue         TypeCode = 0x02 // TypeTrue has no payload.
	TypeInt8         TypeCode = 0x03 // TypeInt8 is followed by 1 byte.
	TypeInt16        TypeCode = 0x04 // TypeInt16 is followed by 2 bytes.
	TypeInt32        TypeCode = 0x05 // TypeInt32 is followed by 4 bytes.
	TypeInt64        TypeCode = 0x06 // TypeInt64 is followed by 8 bytes.
	TypeUInt64       TypeCode = 0x07 // TypeUInt64 is used only above math.MaxInt64.
	TypeFloat32      TypeCode = 0x08 // TypeFloat32 is followed by 4 IEEE-754 bytes.
	TypeFloat64      TypeCode = 0x09 // TypeFloat64 is followed by 8 IEEE-754 bytes.
	TypeRawNumber    TypeCode = 0x0A // TypeRawNumber is followed by a varint length and text.
	TypeDate         TypeCode = 0x0B // TypeDate is followed by 8 bytes of Unix seconds.
	TypeString       TypeCode = 0x0C // TypeString is followed by a varint length and bytes.
	TypeSharedString TypeCode = 0x0D // TypeSharedString is followed by a varint session id.
	TypeExternString TypeCode = 0x0E // TypeExternString is followed by a varint extern id.
	TypeData         TypeCode = 0x0F // TypeData is followed by a varint length and bytes.
	TypeArray        TypeCode = 0x10 // TypeArray is followed by a varint count and children.
	TypeDict         TypeCode = 0x11 // TypeDict is followed by a varint count, pairs and a key index.

	maxTypeCode = TypeDict
)

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

var typeCodeNames = [...]string{
	TypeNull:         "Null",
	TypeFalse:        "False",
	TypeTrue:         "True",
	TypeInt8:         "Int8",
	TypeInt16:        "Int16",
	TypeInt32:        "Int32",
	TypeInt64:        "Int64",
	TypeUInt64:       "UInt64",
	TypeFloat32:      "Float32",
	TypeFloat64:      "Float64",
	TypeRawNumber:    "RawNumber",
	TypeDate:         "Date",
	TypeString:       "String",
	TypeSharedString: "SharedString",
	TypeExternString: "ExternString",
	TypeData:         "Data",
	TypeArray:        "Array",
	TypeDict:         "Dict",
}

// Valid reports whether t is a known type code.
func (t TypeCode) Valid() bool {
	return t <= maxTypeCode
}

// IsString reports whether t is one of the three string encodings.
func (t TypeCode) IsString() bool {
	return t == TypeString || t == TypeSharedString || t == TypeExternString
}

func (t TypeCode) String() string {
	if !t.Valid() {
		return "Unknown"
	}

	return typeCodeNames[t]
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
