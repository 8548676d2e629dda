package fetcher

import (
	"context"
	"io"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// FTPOptions configures the FTP export source.
type FTPOptions struct {
	Timeout time.Duration // dial timeout, default 30s
	User    string        // default anonymous
	Pass    string
}

// FTPSource fetches export files from FTP drop locations. Legacy CRM systems
// still publish exports this way.
type FTPSource struct {
	opts FTPOptions
}

// NewFTPSource creates an FTPSource with the given options.
func NewFTPSource(opts FTPOptions) *FTPSource {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.User == "" {
		opts.User = "anonymous"
		opts.Pass = "anonymous@"
	}
	return &FTPSource{opts: opts}
}

// splitFTPURL returns the dial address (host:port, default port 21) and the
// remote file path.
func splitFTPURL(rawURL string) (addr, path string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", eris.Wrap(err, "ftp: parse url")
	}
	if u.Scheme != "ftp" {
		return "", "", eris.Errorf("ftp: expected ftp scheme, got %q", u.Scheme)
	}
	if u.Path == "" {
		return "", "", eris.New("ftp: url has no file path")
	}

	addr = u.Host
	if _, _, splitErr := net.SplitHostPort(addr); splitErr != nil {
		addr = net.JoinHostPort(addr, "21")
	}
	return addr, u.Path, nil
}

// Fetch retrieves the file. Closing the returned reader also quits the FTP
// session.
func (s *FTPSource) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	addr, path, err := splitFTPURL(rawURL)
	if err != nil {
		return nil, err
	}

	zap.L().Debug("ftp: retrieving export",
		zap.String("addr", addr),
		zap.String("path", path),
	)

	conn, err := ftp.Dial(addr, ftp.DialWithTimeout(s.opts.Timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, eris.Wrap(err, "ftp: dial")
	}
	if err := conn.Login(s.opts.User, s.opts.Pass); err != nil {
		_ = conn.Quit()
		return nil, eris.Wrap(err, "ftp: login")
	}

	resp, err := conn.Retr(path)
	if err != nil {
		_ = conn.Quit()
		return nil, eris.Wrap(err, "ftp: retrieve")
	}
	return &ftpSession{resp: resp, conn: conn}, nil
}

// FetchToFile retrieves the file into path and returns bytes written.
func (s *FTPSource) FetchToFile(ctx context.Context, rawURL, path string) (int64, error) {
	body, err := s.Fetch(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	defer body.Close() //nolint:errcheck

	out, err := os.Create(path)
	if err != nil {
		return 0, eris.Wrap(err, "ftp: create file")
	}
	defer out.Close() //nolint:errcheck

	n, err := io.Copy(out, body)
	if err != nil {
		return n, eris.Wrap(err, "ftp: write file")
	}
	return n, nil
}

// ftpSession ties the transfer reader and the control connection together so
// one Close releases both.
type ftpSession struct {
	resp *ftp.Response
	conn *ftp.ServerConn
}

func (s *ftpSession) Read(p []byte) (int, error) { return s.resp.Read(p) }

func (s *ftpSession) Close() error {
	respErr := s.resp.Close()
	quitErr := s.conn.Quit()
	if respErr != nil {
		return eris.Wrap(respErr, "ftp: close transfer")
	}
	if quitErr != nil {
		return eris.Wrap(quitErr, "ftp: quit session")
	}
	return nil
}
