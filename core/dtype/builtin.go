package dtype

import (
	"math"
	"strconv"
	"strings"

	"github.com/artpar/racksdb/core/dberr"
)

// Builtins returns a registry holding every builtin defined type.
func Builtins() *Registry {
	r := NewRegistry()
	for _, t := range builtinTypes() {
		// names are distinct, Register cannot fail here
		_ = r.Register(t)
	}
	return r
}

func builtinTypes() []DefinedType {
	return []DefinedType{
		MustNew("dimension", `(\d+(\.\d+)?)(mm|cm|m)`, NativeInt, scaled(map[string]float64{
			"mm": 1,
			"cm": 10,
			"m":  1000,
		})),
		MustNew("bits", `(\d+(\.\d+)?)(Tb|Gb|Mb)`, NativeInt, scaled(map[string]float64{
			"Mb": 1e6,
			"Gb": 1e9,
			"Tb": 1e12,
		})),
		MustNew("bytes", `(\d+(\.\d+)?)(TB|GB|MB)`, NativeInt, scaled(map[string]float64{
			"MB": math.Pow(1024, 2),
			"GB": math.Pow(1024, 3),
			"TB": math.Pow(1024, 4),
		})),
		MustNew("watts", `(\d+(\.\d+)?)(W|kW|MW)`, NativeInt, scaled(map[string]float64{
			"W":  1,
			"kW": 1e3,
			"MW": 1e6,
		})),
		MustNew("rack_height", `(\d+)u`, NativeInt, func(m []string) (any, error) {
			return strconv.Atoi(m[1])
		}),
		MustNew("rack_width", `full|(\d+)(/\d+)?`, NativeFloat, parseRackWidth),
		MustNew("angle", `\d+`, NativeInt, parseAngle),
		MustNew("hexcolor", `#[0-9a-fA-F]{6}([0-9a-fA-F]{2})?`, NativeRGBA, parseHexColor),
		MustNew("netif_type", `ethernet|infiniband`, NativeString, nil),
		MustNew("storage_type", `ssd|disk|nvme`, NativeString, nil),
	}
}

// scaled converts "<quantity><unit>" literals, the quantity in m[1] and
// the unit in m[3], truncating the scaled value to an integer.
func scaled(units map[string]float64) ConvertFunc {
	return func(m []string) (any, error) {
		quantity, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return nil, dberr.Formatf("invalid quantity %s: %v", m[1], err)
		}
		return int(quantity * units[m[3]]), nil
	}
}

func parseRackWidth(m []string) (any, error) {
	if m[0] == "full" {
		return 1.0, nil
	}
	dividend, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil, dberr.Formatf("invalid rack width %s: %v", m[0], err)
	}
	divisor := 1.0
	if m[2] != "" {
		divisor, err = strconv.ParseFloat(strings.TrimPrefix(m[2], "/"), 64)
		if err != nil || divisor == 0 {
			return nil, dberr.Formatf("invalid rack width divisor in %s", m[0])
		}
	}
	return dividend / divisor, nil
}

func parseAngle(m []string) (any, error) {
	degrees, err := strconv.Atoi(m[0])
	if err != nil || degrees > 360 {
		return nil, dberr.Formatf("Invalid angle of %s degrees", m[0])
	}
	return degrees, nil
}

func parseHexColor(m []string) (any, error) {
	hex := strings.TrimPrefix(m[0], "#")
	color := RGBA{0, 0, 0, 1.0}
	for i := 0; i*2 < len(hex); i++ {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return nil, dberr.Formatf("invalid color %s: %v", m[0], err)
		}
		color[i] = float64(v) / 255
	}
	return color, nil
}
