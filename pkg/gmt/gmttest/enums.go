package gmttest

// Enums holds the constant values reported by GetEnum. They only need to be
// distinct where the fake decodes them, not equal to a real GMT build.
var Enums = map[string]int32{
	"GMT_SESSION_EXTERNAL": 2,
	"GMT_PAD_DEFAULT":      2,
	"GMT_MODULE_CMD":       0,

	"GMT_IS_DATASET": 0,
	"GMT_IS_GRID":    1,
	"GMT_IS_VECTOR":  5,
	"GMT_IS_MATRIX":  6,
	"GMT_VIA_VECTOR": 100,
	"GMT_VIA_MATRIX": 200,

	"GMT_IS_POINT": 1,
	"GMT_IS_PLP":   7,

	"GMT_IN":           0,
	"GMT_OUT":          1,
	"GMT_IS_DUPLICATE": 16,
	"GMT_IS_REFERENCE": 32,

	"GMT_CONTAINER_ONLY": 1,
	"GMT_IS_FILE":        0,
	"GMT_WRITE_SET":      0,

	"GMT_INT":      4,
	"GMT_LONG":     6,
	"GMT_FLOAT":    8,
	"GMT_DOUBLE":   9,
	"GMT_TEXT":     16,
	"GMT_DATETIME": 32,

	"GMT_VF_LEN": 16,
}

// Defaults holds the values reported by GetDefault.
var Defaults = map[string]string{
	"API_VERSION":   "6.5.0",
	"API_CORES":     "4",
	"API_BINDIR":    "/opt/gmt/bin",
	"API_SHAREDIR":  "/opt/gmt/share",
	"API_LIBRARY":   "/opt/gmt/lib/libgmt.so",
	"API_DATADIR":   "",
	"API_PLUGINDIR": "/opt/gmt/lib/gmt/plugins",
}

func enum(name string) uint32 { return uint32(Enums[name]) }

// Status codes returned by the fake.
const (
	StatusError         int32 = 1
	StatusUnknownModule int32 = 71
)
