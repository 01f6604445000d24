package world

import (
	"os"
	"strings"

	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/pmove/game"
	"github.com/oomph-ac/pmove/oerror"
	"github.com/pelletier/go-toml"
	"github.com/sirupsen/logrus"
)

// Level is a parsed level description. Levels are immutable and may be shared
// by any number of worlds.
type Level struct {
	Name     string
	Spawn    mgl32.Vec3
	Brushes  []*Brush
	Entities []EntityOptions
}

type levelFile struct {
	Name     string      `toml:"name"`
	Spawn    []float64   `toml:"spawn"`
	Brushes  []brushFile `toml:"brush"`
	Entities []struct {
		Name       string      `toml:"name"`
		Origin     []float64   `toml:"origin"`
		Yaw        float64     `toml:"yaw"`
		Mantleable bool        `toml:"mantleable"`
		Movable    bool        `toml:"movable"`
		Mass       float64     `toml:"mass"`
		Brushes    []brushFile `toml:"brush"`
	} `toml:"entity"`
}

type brushFile struct {
	Name     string    `toml:"name"`
	Min      []float64 `toml:"min"`
	Max      []float64 `toml:"max"`
	Contents []string  `toml:"contents"`
	Surface  []string  `toml:"surface"`
	Planes   []struct {
		Normal []float64 `toml:"normal"`
		Dist   float64   `toml:"dist"`
	} `toml:"plane"`
}

var contentNames = map[string]game.Contents{
	"solid":       game.ContentsSolid,
	"water":       game.ContentsWater,
	"slime":       game.ContentsSlime,
	"lava":        game.ContentsLava,
	"playerclip":  game.ContentsPlayerClip,
	"monsterclip": game.ContentsMonsterClip,
	"body":        game.ContentsBody,
	"corpse":      game.ContentsCorpse,
	"trigger":     game.ContentsTrigger,
}

var surfaceNames = map[string]game.SurfaceFlags{
	"slick":    game.SurfaceSlick,
	"ladder":   game.SurfaceLadder,
	"nostep":   game.SurfaceNoStep,
	"noimpact": game.SurfaceNoImpact,
}

// LoadLevel reads a level file. Files with the same content are parsed once
// and shared, see Cache.
func LoadLevel(path string) (*CachedLevel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oerror.Wrap(err, "level: error reading %s", path)
	}
	return Cache(data)
}

// ParseLevel decodes a TOML level description.
func ParseLevel(data []byte) (*Level, error) {
	var f levelFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, oerror.Wrap(err, "level: error decoding")
	}

	l := &Level{Name: f.Name}
	if f.Spawn != nil {
		spawn, err := vec3("spawn", f.Spawn)
		if err != nil {
			return nil, err
		}
		l.Spawn = spawn
	}

	for _, bf := range f.Brushes {
		b, err := bf.brush()
		if err != nil {
			return nil, err
		}
		l.Brushes = append(l.Brushes, b)
	}
	for _, ef := range f.Entities {
		opts := EntityOptions{
			Name:       ef.Name,
			Yaw:        float32(ef.Yaw),
			Mantleable: ef.Mantleable,
			Movable:    ef.Movable,
			Mass:       float32(ef.Mass),
		}
		if ef.Origin != nil {
			origin, err := vec3("entity "+ef.Name+" origin", ef.Origin)
			if err != nil {
				return nil, err
			}
			opts.Origin = origin
		}
		for _, bf := range ef.Brushes {
			b, err := bf.brush()
			if err != nil {
				return nil, err
			}
			opts.Brushes = append(opts.Brushes, b)
		}
		l.Entities = append(l.Entities, opts)
	}
	return l, nil
}

func (bf brushFile) brush() (*Brush, error) {
	min, err := vec3("brush "+bf.Name+" min", bf.Min)
	if err != nil {
		return nil, err
	}
	max, err := vec3("brush "+bf.Name+" max", bf.Max)
	if err != nil {
		return nil, err
	}
	if min[0] >= max[0] || min[1] >= max[1] || min[2] >= max[2] {
		return nil, oerror.New(game.ErrorLevelBrush, bf.Name)
	}

	b := &Brush{
		Name:   bf.Name,
		Bounds: cube.Box(min[0], min[1], min[2], max[0], max[1], max[2]),
	}
	for _, name := range bf.Contents {
		c, ok := contentNames[strings.ToLower(name)]
		if !ok {
			return nil, oerror.New("level: brush %q has unknown contents %q", bf.Name, name)
		}
		b.Contents |= c
	}
	if b.Contents == 0 {
		b.Contents = game.ContentsSolid
	}
	for _, name := range bf.Surface {
		s, ok := surfaceNames[strings.ToLower(name)]
		if !ok {
			return nil, oerror.New("level: brush %q has unknown surface %q", bf.Name, name)
		}
		b.Surface |= s
	}
	for _, pf := range bf.Planes {
		n, err := vec3("brush "+bf.Name+" plane normal", pf.Normal)
		if err != nil {
			return nil, err
		}
		if n.Len() == 0 {
			return nil, oerror.New("level: brush %q has a plane without a normal", bf.Name)
		}
		b.Planes = append(b.Planes, Plane{Normal: n.Normalize(), Dist: float32(pf.Dist)})
	}
	return b, nil
}

func vec3(what string, v []float64) (mgl32.Vec3, error) {
	if len(v) != 3 {
		return mgl32.Vec3{}, oerror.New("level: %s must have 3 components, got %d", what, len(v))
	}
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}, nil
}

// Build creates a world holding the brushes and entities of the level.
func (l *Level) Build(log *logrus.Logger) *World {
	w := New(log)
	for _, b := range l.Brushes {
		w.AddBrush(b)
	}
	for _, opts := range l.Entities {
		w.Spawn(opts)
	}
	w.log.WithFields(logrus.Fields{"world": w.id, "level": l.Name, "brushes": len(l.Brushes), "entities": len(l.Entities)}).Info("built level")
	return w
}
