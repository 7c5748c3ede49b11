package tools

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// extractArchive はアーカイブを展開する。対応形式: .zip / .tar / .tar.gz / .tgz
// destination 省略時はアーカイブと同じ場所の stem 名ディレクトリに展開する。
func (t *Toolset) extractArchive(ctx context.Context, args map[string]any) (*Result, error) {
	archivePath, err := stringArg(args, "archive_path")
	if err != nil {
		return nil, err
	}
	arc := t.Resolver.NormalizePath(archivePath)
	if _, err := os.Stat(arc); err != nil {
		return nil, fmt.Errorf("tools: extract_archive: archive not found: %s", archivePath)
	}

	var dest string
	if d := optStringArg(args, "destination", ""); d != "" {
		dest = t.Resolver.NormalizePath(d)
	} else {
		base := filepath.Base(arc)
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		stem = strings.TrimSuffix(stem, ".tar") // foo.tar.gz -> foo
		dest = filepath.Join(filepath.Dir(arc), stem)
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, fmt.Errorf("tools: extract_archive: %w", err)
	}

	var extracted []string
	lower := strings.ToLower(arc)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		extracted, err = extractZip(arc, dest)
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		extracted, err = extractTar(arc, dest, true)
	case strings.HasSuffix(lower, ".tar"):
		extracted, err = extractTar(arc, dest, false)
	default:
		return nil, fmt.Errorf("tools: extract_archive: unsupported archive format %q (supported: .zip, .tar, .tar.gz, .tgz)", filepath.Ext(arc))
	}
	if err != nil {
		return nil, fmt.Errorf("tools: extract_archive: %w", err)
	}

	// 表示は先頭20件まで
	listed := extracted
	if len(listed) > 20 {
		listed = listed[:20]
	}
	return &Result{
		Message: fmt.Sprintf("extracted %d file(s) to %s", len(extracted), dest),
		Data: map[string]any{
			"archive":     arc,
			"destination": dest,
			"total_files": len(extracted),
			"files":       strings.Join(listed, "\n"),
		},
	}, nil
}

// securePath は展開先ディレクトリからの脱出（zip slip）を検出する。
func securePath(dest, name string) (string, error) {
	target := filepath.Join(dest, name)
	cleanDest := filepath.Clean(dest)
	if target != cleanDest && !strings.HasPrefix(target, cleanDest+string(os.PathSeparator)) {
		return "", fmt.Errorf("illegal path in archive: %s", name)
	}
	return target, nil
}

func extractZip(arc, dest string) ([]string, error) {
	r, err := zip.OpenReader(arc)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var names []string
	for _, f := range r.File {
		target, err := securePath(dest, f.Name)
		if err != nil {
			return nil, err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return nil, err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return nil, err
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode().Perm())
		if err != nil {
			rc.Close()
			return nil, err
		}
		_, err = io.Copy(out, rc)
		rc.Close()
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, err
		}
		names = append(names, f.Name)
	}
	return names, nil
}

func extractTar(arc string, dest string, gzipped bool) ([]string, error) {
	f, err := os.Open(arc)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var src io.Reader = f
	if gzipped {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		src = gz
	}

	tr := tar.NewReader(src)
	var names []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		target, err := securePath(dest, hdr.Name)
		if err != nil {
			return nil, err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return nil, err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return nil, err
			}
			out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, os.FileMode(hdr.Mode).Perm())
			if err != nil {
				return nil, err
			}
			_, err = io.Copy(out, tr)
			if cerr := out.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return nil, err
			}
			names = append(names, hdr.Name)
		default:
			// symlink 等はスキップ（展開先の外を指せるため）
		}
	}
	return names, nil
}
