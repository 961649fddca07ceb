package input

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// DefaultTimeout bounds remote reads.
const DefaultTimeout = 30 * time.Second

// maxRemoteSize caps documents read over the network.
const maxRemoteSize = 32 << 20

// IsRemote reports whether src is an http, https or ftp URL.
func IsRemote(src string) bool {
	for _, p := range []string{"http://", "https://", "ftp://"} {
		if strings.HasPrefix(strings.ToLower(src), p) {
			return true
		}
	}
	return false
}

// BaseName returns the file name of src without its extension. It works for
// local paths and URLs.
func BaseName(src string) string {
	p := src
	if IsRemote(src) {
		if u, err := url.Parse(src); err == nil {
			p = u.Path
		}
	}
	base := path.Base(strings.ReplaceAll(p, `\`, "/"))
	if base == "/" || base == "." {
		return "batch"
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

// ext returns the lower-cased extension of src, ignoring URL query strings.
func ext(src string) string {
	p := src
	if IsRemote(src) {
		if u, err := url.Parse(src); err == nil {
			p = u.Path
		}
	}
	return strings.ToLower(path.Ext(p))
}

// Open returns a reader for a local path or an http(s) or ftp URL. The
// caller must close it.
func Open(ctx context.Context, src string) (io.ReadCloser, error) {
	switch {
	case strings.HasPrefix(strings.ToLower(src), "ftp://"):
		return openFTP(ctx, src, DefaultTimeout)
	case IsRemote(src):
		return openHTTP(ctx, src, DefaultTimeout)
	default:
		f, err := os.Open(src)
		if err != nil {
			return nil, eris.Wrapf(err, "input: open %s", src)
		}
		return f, nil
	}
}

func openHTTP(ctx context.Context, src string, timeout time.Duration) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, eris.Wrap(err, "input: build request")
	}
	req.Header.Set("Accept", "application/json, application/yaml, */*")

	resp, err := (&http.Client{Timeout: timeout}).Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "input: fetch %s", src)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		return nil, eris.Errorf("input: fetch %s: status %d", src, resp.StatusCode)
	}
	return readCloser{Reader: io.LimitReader(resp.Body, maxRemoteSize), Closer: resp.Body}, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}

// parseFTPURL extracts host (with port), path and credentials from an FTP
// URL. Credentials default to anonymous.
func parseFTPURL(rawURL string) (host, filePath, user, pass string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", "", "", eris.Wrap(err, "input: parse ftp url")
	}
	if !strings.EqualFold(u.Scheme, "ftp") {
		return "", "", "", "", eris.Errorf("input: expected ftp scheme, got %q", u.Scheme)
	}

	host = u.Host
	if _, _, splitErr := net.SplitHostPort(host); splitErr != nil {
		host = net.JoinHostPort(host, "21")
	}

	filePath = u.Path
	if filePath == "" || filePath == "/" {
		return "", "", "", "", eris.New("input: empty path in ftp url")
	}

	user, pass = "anonymous", "anonymous@"
	if u.User != nil {
		user = u.User.Username()
		if p, ok := u.User.Password(); ok {
			pass = p
		}
	}
	return host, filePath, user, pass, nil
}

// ftpConnReader closes the FTP response and the connection together.
type ftpConnReader struct {
	resp *ftp.Response
	conn *ftp.ServerConn
}

func (r *ftpConnReader) Read(p []byte) (int, error) {
	return r.resp.Read(p)
}

func (r *ftpConnReader) Close() error {
	respErr := r.resp.Close()
	quitErr := r.conn.Quit()
	if respErr != nil {
		return eris.Wrap(respErr, "input: close ftp response")
	}
	return eris.Wrap(quitErr, "input: quit ftp connection")
}

func openFTP(ctx context.Context, src string, timeout time.Duration) (io.ReadCloser, error) {
	host, filePath, user, pass, err := parseFTPURL(src)
	if err != nil {
		return nil, err
	}

	zap.L().Debug("input: ftp connecting", zap.String("host", host), zap.String("path", filePath))

	conn, err := ftp.Dial(host, ftp.DialWithTimeout(timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, eris.Wrap(err, "input: ftp dial")
	}
	if err := conn.Login(user, pass); err != nil {
		_ = conn.Quit()
		return nil, eris.Wrap(err, "input: ftp login")
	}

	resp, err := conn.Retr(filePath)
	if err != nil {
		_ = conn.Quit()
		return nil, eris.Wrapf(err, "input: ftp retrieve %s", filePath)
	}
	return &ftpConnReader{resp: resp, conn: conn}, nil
}
