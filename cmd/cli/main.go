// Command securecat is a CLI client for the SecureCAT service.
package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	grpcinsecure "google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/daviddatuX25/securecat-sub001/internal/api"
)

// ---- config/token store ----

type tokenFile struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      int64     `json:"user_id"`
	Role        string    `json:"role"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "securecat")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "securecat")
}

func tokenPath() string { return filepath.Join(cfgDir(), "token.json") }

func saveToken(tf tokenFile) error {
	if err := os.MkdirAll(cfgDir(), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(tokenPath(), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(tf)
}

func loadToken() (string, error) {
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", err
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return "", err
	}
	if tf.AccessToken == "" || time.Now().After(tf.ExpiresAt) {
		return "", errors.New("no valid token (login required)")
	}
	return tf.AccessToken, nil
}

// ---- grpc dial ----

type bearerCreds struct {
	token  string
	secure bool
}

func (b bearerCreds) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	return map[string]string{"authorization": "Bearer " + b.token}, nil
}
func (b bearerCreds) RequireTransportSecurity() bool { return b.secure }

type connOpts struct {
	addr      string
	caPath    string
	insecure  bool
	plaintext bool
}

func loadTLS(caPath string, insecure bool) (credentials.TransportCredentials, error) {
	if insecure {
		return credentials.NewTLS(&tls.Config{InsecureSkipVerify: true}), nil
	}
	if caPath == "" {
		return credentials.NewClientTLSFromCert(nil, ""), nil
	}
	pem, err := os.ReadFile(caPath)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.New("bad CA cert")
	}
	return credentials.NewTLS(&tls.Config{RootCAs: pool}), nil
}

func dial(o connOpts, bearer string) (*grpc.ClientConn, *api.Client, error) {
	var creds credentials.TransportCredentials
	if o.plaintext {
		creds = grpcinsecure.NewCredentials()
	} else {
		c, err := loadTLS(o.caPath, o.insecure)
		if err != nil {
			return nil, nil, err
		}
		creds = c
	}
	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(creds),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(api.CodecName)),
	}
	if bearer != "" {
		opts = append(opts, grpc.WithPerRPCCredentials(bearerCreds{token: bearer, secure: !o.plaintext}))
	}
	cc, err := grpc.NewClient(o.addr, opts...)
	if err != nil {
		return nil, nil, err
	}
	return cc, api.NewClient(cc), nil
}

// ---- utils ----

func readAll(p string) ([]byte, error) {
	if p == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(p)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// parseQR reads the scanned QR document {"qr_payload":..., "qr_signature":...}.
func parseQR(b []byte) (*api.VerifyCredentialRequest, error) {
	var req api.VerifyCredentialRequest
	if err := json.Unmarshal(b, &req); err != nil {
		return nil, fmt.Errorf("qr document: %w", err)
	}
	if req.QRPayload == "" || req.QRSignature == "" {
		return nil, errors.New("qr document: missing qr_payload or qr_signature")
	}
	return &req, nil
}

// parseDetails decodes an optional JSON object given on the command line.
func parseDetails(s string) (map[string]any, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, fmt.Errorf("details: %w", err)
	}
	return m, nil
}

// parseWindow parses RFC3339 start and end times.
func parseWindow(start, end string) (time.Time, time.Time, error) {
	s, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start: %w", err)
	}
	e, err := time.Parse(time.RFC3339, end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end: %w", err)
	}
	if !e.After(s) {
		return time.Time{}, time.Time{}, errors.New("end must be after start")
	}
	return s, e, nil
}

func usage() {
	fmt.Fprintf(os.Stderr, `securecat CLI
Usage:
  securecat -addr HOST:PORT [-cacert file | -insecure | -plaintext] <cmd> [args]

Commands:
  version
  login        -e <email> -p <password>                 (saves token)
  register     -e <email> -p <password> -role <role>    (admin)
  assign       -applicant <id> -session <id>
  get          -id <assignment id>
  scan         -qr <file|->  |  -payload <json> -sig <hex>
  reschedule   -id <session id> -room <id> -start <rfc3339> -end <rfc3339>
  rm-session   -id <session id>
  audit        -action <a.b> -type <entity> -id <entity id> [-details <json>]
  audit-list   [-type <entity>] [-id <entity id>] [-action <a.b>] [-limit N]   (admin)
`)
	os.Exit(2)
}

// ---- main ----

var (
	version   = "dev"
	buildDate = "unknown"
)

// main dispatches subcommands and configures TLS/auth for RPC calls.
func main() {
	var o connOpts
	flag.StringVar(&o.addr, "addr", "localhost:8443", "server addr")
	flag.StringVar(&o.caPath, "cacert", "", "CA cert (PEM)")
	flag.BoolVar(&o.insecure, "insecure", false, "skip cert verify (dev)")
	flag.BoolVar(&o.plaintext, "plaintext", false, "no TLS at all (dev server)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd, args := flag.Arg(0), flag.Args()[1:]

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cmd {
	case "version":
		fmt.Printf("securecat %s (%s)\n", version, buildDate)

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		e := fs.String("e", "", "email")
		p := fs.String("p", "", "password")
		_ = fs.Parse(args)
		if *e == "" || *p == "" {
			fmt.Fprintln(os.Stderr, "need -e and -p")
			os.Exit(1)
		}
		cc, cli, err := dial(o, "")
		if err != nil {
			fail(err)
		}
		defer cc.Close()

		resp, err := cli.Login(ctx, &api.LoginRequest{Email: *e, Password: *p})
		if err != nil {
			fail(err)
		}
		if err := saveToken(tokenFile{AccessToken: resp.AccessToken, ExpiresAt: resp.ExpiresAt, UserID: resp.UserID, Role: resp.Role}); err != nil {
			fail(err)
		}
		fmt.Printf("ok (user %d, %s)\n", resp.UserID, resp.Role)

	case "register":
		fs := flag.NewFlagSet("register", flag.ExitOnError)
		e := fs.String("e", "", "email")
		p := fs.String("p", "", "password")
		role := fs.String("role", "staff", "admin|staff|proctor")
		_ = fs.Parse(args)
		if *e == "" || *p == "" {
			fmt.Fprintln(os.Stderr, "need -e and -p")
			os.Exit(1)
		}
		cc, cli := authed(o)
		defer cc.Close()

		resp, err := cli.RegisterUser(ctx, &api.RegisterUserRequest{Email: *e, Password: *p, Role: *role})
		if err != nil {
			fail(err)
		}
		fmt.Println(resp.UserID)

	case "assign":
		fs := flag.NewFlagSet("assign", flag.ExitOnError)
		applicant := fs.Int64("applicant", 0, "applicant id")
		session := fs.Int64("session", 0, "exam session id")
		_ = fs.Parse(args)
		if *applicant <= 0 || *session <= 0 {
			fmt.Fprintln(os.Stderr, "need -applicant and -session")
			os.Exit(1)
		}
		cc, cli := authed(o)
		defer cc.Close()

		resp, err := cli.CreateAssignment(ctx, &api.CreateAssignmentRequest{ApplicantID: *applicant, ExamSessionID: *session})
		if err != nil {
			fail(err)
		}
		printJSON(resp.Assignment)

	case "get":
		fs := flag.NewFlagSet("get", flag.ExitOnError)
		id := fs.Int64("id", 0, "assignment id")
		_ = fs.Parse(args)
		if *id <= 0 {
			fmt.Fprintln(os.Stderr, "need -id")
			os.Exit(1)
		}
		cc, cli := authed(o)
		defer cc.Close()

		resp, err := cli.GetAssignment(ctx, &api.GetAssignmentRequest{ID: *id})
		if err != nil {
			fail(err)
		}
		printJSON(resp)

	case "scan":
		fs := flag.NewFlagSet("scan", flag.ExitOnError)
		qr := fs.String("qr", "", "QR document file, - for stdin")
		payload := fs.String("payload", "", "qr_payload")
		sig := fs.String("sig", "", "qr_signature")
		_ = fs.Parse(args)

		req := &api.VerifyCredentialRequest{QRPayload: *payload, QRSignature: *sig}
		if *qr != "" {
			b, err := readAll(*qr)
			if err != nil {
				fail(err)
			}
			if req, err = parseQR(b); err != nil {
				fail(err)
			}
		}
		if req.QRPayload == "" || req.QRSignature == "" {
			fmt.Fprintln(os.Stderr, "need -qr or -payload and -sig")
			os.Exit(1)
		}
		cc, cli := authed(o)
		defer cc.Close()

		resp, err := cli.VerifyCredential(ctx, req)
		if err != nil {
			fail(err)
		}
		printJSON(resp)

	case "reschedule":
		fs := flag.NewFlagSet("reschedule", flag.ExitOnError)
		id := fs.Int64("id", 0, "exam session id")
		room := fs.Int64("room", 0, "room id")
		start := fs.String("start", "", "start time (RFC3339)")
		end := fs.String("end", "", "end time (RFC3339)")
		_ = fs.Parse(args)
		startsAt, endsAt, err := parseWindow(*start, *end)
		if err != nil || *id <= 0 || *room <= 0 {
			fmt.Fprintln(os.Stderr, "need -id, -room and a valid -start/-end window")
			os.Exit(1)
		}
		cc, cli := authed(o)
		defer cc.Close()

		resp, err := cli.RescheduleExamSession(ctx, &api.RescheduleExamSessionRequest{ID: *id, RoomID: *room, StartsAt: startsAt, EndsAt: endsAt})
		if err != nil {
			fail(err)
		}
		printJSON(resp.Session)

	case "rm-session":
		fs := flag.NewFlagSet("rm-session", flag.ExitOnError)
		id := fs.Int64("id", 0, "exam session id")
		_ = fs.Parse(args)
		if *id <= 0 {
			fmt.Fprintln(os.Stderr, "need -id")
			os.Exit(1)
		}
		cc, cli := authed(o)
		defer cc.Close()

		if _, err := cli.DeleteExamSession(ctx, &api.DeleteExamSessionRequest{ID: *id}); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "audit":
		fs := flag.NewFlagSet("audit", flag.ExitOnError)
		action := fs.String("action", "", "dotted action, e.g. application.approve")
		typ := fs.String("type", "", "entity type")
		id := fs.String("id", "", "entity id")
		details := fs.String("details", "", "JSON object")
		_ = fs.Parse(args)
		if *action == "" || *typ == "" || *id == "" {
			fmt.Fprintln(os.Stderr, "need -action, -type and -id")
			os.Exit(1)
		}
		d, err := parseDetails(*details)
		if err != nil {
			fail(err)
		}
		cc, cli := authed(o)
		defer cc.Close()

		resp, err := cli.RecordAudit(ctx, &api.RecordAuditRequest{Action: *action, EntityType: *typ, EntityID: *id, Details: d})
		if err != nil {
			fail(err)
		}
		printJSON(resp.Record)

	case "audit-list":
		fs := flag.NewFlagSet("audit-list", flag.ExitOnError)
		typ := fs.String("type", "", "entity type")
		id := fs.String("id", "", "entity id")
		action := fs.String("action", "", "action")
		limit := fs.Int("limit", 0, "max rows (server default 100)")
		_ = fs.Parse(args)
		cc, cli := authed(o)
		defer cc.Close()

		resp, err := cli.ListAudit(ctx, &api.ListAuditRequest{EntityType: *typ, EntityID: *id, Action: *action, Limit: *limit})
		if err != nil {
			fail(err)
		}
		printJSON(resp.Records)

	default:
		usage()
	}
}

// ---- helpers ----

// authed dials with the saved access token or exits.
func authed(o connOpts) (*grpc.ClientConn, *api.Client) {
	token, err := loadToken()
	if err != nil {
		fail(err)
	}
	cc, cli, err := dial(o, token)
	if err != nil {
		fail(err)
	}
	return cc, cli
}

func fail(err error) {
	if s, ok := status.FromError(err); ok {
		fmt.Fprintf(os.Stderr, "rpc error: code=%s msg=%s\n", s.Code(), s.Message())
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
