package x2sys

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"

	"github.com/geobind/gmt-go/pkg/gmt"
	"github.com/geobind/gmt-go/pkg/gmt/table"
)

// HomeEnv names the directory x2sys keeps its tags in.
const HomeEnv = "X2SYS_HOME"

// InitAliases are the parameters Init accepts.
var InitAliases = gmt.Aliases{
	{Flag: "D", Name: "fmtfile"},
	{Flag: "E", Name: "suffix"},
	{Flag: "F", Name: "force"},
	{Flag: "G", Name: "discontinuity"},
	{Flag: "I", Name: "spacing", Sep: "/"},
	{Flag: "N", Name: "units"},
	{Flag: "R", Name: "region", Sep: "/"},
	{Flag: "V", Name: "verbose"},
	{Flag: "W", Name: "gap"},
	{Flag: "j", Name: "distcalc"},
}

// CrossAliases are the parameters Cross accepts.
var CrossAliases = gmt.Aliases{
	{Flag: "A", Name: "combitable"},
	{Flag: "C", Name: "runtimes"},
	{Flag: "D", Name: "override"},
	{Flag: "I", Name: "interpolation"},
	{Flag: "R", Name: "region", Sep: "/"},
	{Flag: "S", Name: "speed"},
	{Flag: "T", Name: "tag"},
	{Flag: "Q", Name: "coe"},
	{Flag: "V", Name: "verbose"},
	{Flag: "W", Name: "numpoints"},
	{Flag: "Z", Name: "trackvalues"},
}

// Init creates the x2sys tag database for one kind of track data.
func Init(ctx context.Context, s *gmt.Session, tag string, params gmt.Params) error {
	if tag == "" {
		return fmt.Errorf("%w: x2sys_init needs a tag", gmt.ErrInvalidInput)
	}
	args, err := gmt.BuildArgs(InitAliases, params)
	if err != nil {
		return err
	}
	return s.CallModule(ctx, "x2sys_init", join(tag, args))
}

// Cross computes crossovers between tracks. A track is a file name, or a
// *table.Table written to a temporary track file using the suffix of the tag
// given in params. With outfile empty the crossovers are returned as a table;
// otherwise they are left in outfile and the table is nil.
func Cross(ctx context.Context, s *gmt.Session, tracks []any, outfile string, params gmt.Params) (_ *table.Table, err error) {
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: no tracks", gmt.ErrInvalidInput)
	}
	args, err := gmt.BuildArgs(CrossAliases, params)
	if err != nil {
		return nil, err
	}

	var temps []*gmt.TempFile
	defer func() {
		for _, tmp := range temps {
			err = errors.Join(err, tmp.Remove())
		}
	}()

	names := make([]string, 0, len(tracks))
	suffix := ""
	for i, track := range tracks {
		kind, err := gmt.DataKind(track)
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", i, err)
		}
		switch kind {
		case gmt.KindFile:
			names = append(names, track.(string))
		case gmt.KindTable:
			if suffix == "" {
				if suffix, err = TrackSuffix(s.Fs(), os.Getenv(HomeEnv), tagOf(params)); err != nil {
					return nil, err
				}
			}
			tmp, err := writeTrack(s, track.(*table.Table), suffix)
			if err != nil {
				return nil, fmt.Errorf("track %d: %w", i, err)
			}
			temps = append(temps, tmp)
			names = append(names, tmp.Name())
		default:
			return nil, fmt.Errorf("%w: track %d is a %s", gmt.ErrUnrecognizedInputKind, i, kind)
		}
	}

	target := outfile
	if target == "" {
		out, err := gmt.NewTempFile(s.Fs(), s.TempDir(), "gmt-go-", ".txt")
		if err != nil {
			return nil, err
		}
		temps = append(temps, out)
		target = out.Name()
	}

	cmd := join(append(names, args, "->"+target)...)
	if err := s.CallModule(ctx, "x2sys_cross", cmd); err != nil {
		return nil, err
	}
	if outfile != "" {
		return nil, nil
	}

	f, err := s.Fs().Open(target)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return table.Read(f, table.GMTOutput(2, 3))
}

// TrackSuffix returns the file suffix tracks of tag use, read from the last
// line of $X2SYS_HOME/<tag>/<tag>.tag. An -E suffix wins over a -D format.
func TrackSuffix(fsys afero.Fs, home, tag string) (string, error) {
	if tag == "" {
		return "", fmt.Errorf("%w: a tag is required to write table tracks", gmt.ErrInvalidInput)
	}
	if home == "" {
		return "", fmt.Errorf("%w: %s is not set", gmt.ErrInvalidInput, HomeEnv)
	}
	b, err := afero.ReadFile(fsys, filepath.Join(home, tag, tag+".tag"))
	if err != nil {
		return "", fmt.Errorf("x2sys: read tag %s: %w", tag, err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	items := strings.Fields(lines[len(lines)-1])
	slices.Sort(items)

	suffix := ""
	for _, item := range items {
		if strings.HasPrefix(item, "-E") || strings.HasPrefix(item, "-D") {
			suffix = item[2:]
		}
	}
	if suffix == "" {
		return "", fmt.Errorf("%w: tag %s declares no -E or -D", gmt.ErrInvalidInput, tag)
	}
	return suffix, nil
}

func writeTrack(s *gmt.Session, t *table.Table, suffix string) (*gmt.TempFile, error) {
	name := filepath.Join(s.TempDir(), "track-"+gmt.UniqueName()[:7]+"."+suffix)
	tmp, err := gmt.CreateTempFile(s.Fs(), name)
	if err != nil {
		return nil, err
	}
	f, err := s.Fs().OpenFile(name, os.O_WRONLY|os.O_TRUNC, 0o600)
	if err == nil {
		err = table.Write(f, t)
		err = errors.Join(err, f.Close())
	}
	if err != nil {
		return nil, errors.Join(err, tmp.Remove())
	}
	return tmp, nil
}

func tagOf(params gmt.Params) string {
	for _, key := range []string{"tag", "T"} {
		if tag, ok := params[key].(string); ok {
			return tag
		}
	}
	return ""
}

func join(parts ...string) string {
	return strings.Join(slices.DeleteFunc(parts, func(p string) bool { return p == "" }), " ")
}
