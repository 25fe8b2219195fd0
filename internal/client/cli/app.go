package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/supabase-community/gotrue-go/types"
	"github.com/supabase-community/supabase-go"

	"partner-media-backend/internal/client/auth"
	"partner-media-backend/internal/client/kvstore"
	"partner-media-backend/internal/client/media"
	"partner-media-backend/internal/client/session"
	"partner-media-backend/internal/client/telemetry"
	"partner-media-backend/internal/logging"
	"partner-media-backend/internal/models"
)

const (
	sessionKey  = "auth.session"
	deviceIDKey = "device.id"
)

type Config struct {
	SupabaseURL     string
	SupabaseAnonKey string
	EdgeBaseURL     string
	StateFile       string
}

func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		SupabaseURL:     os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey: os.Getenv("SUPABASE_ANON_KEY"),
		EdgeBaseURL:     os.Getenv("EDGE_BASE_URL"),
		StateFile:       os.Getenv("PARTNERCTL_STATE"),
	}
	if cfg.SupabaseURL == "" || cfg.SupabaseAnonKey == "" {
		return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_ANON_KEY are required")
	}
	if cfg.EdgeBaseURL == "" {
		cfg.EdgeBaseURL = cfg.SupabaseURL + "/functions/v1"
	}
	if cfg.StateFile == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve state dir: %w", err)
		}
		cfg.StateFile = filepath.Join(dir, "partnerctl", "state.json")
	}
	return cfg, nil
}

type App struct {
	cfg      *Config
	log      logging.Logger
	store    *kvstore.Store
	holder   *session.Holder
	backend  auth.Backend
	api      *auth.API
	gate     *auth.Gate
	ef       *media.EdgeClient
	gallery  *media.Gallery
	resolver *media.Resolver
	uploader *media.Uploader
	tq       *telemetry.Queue
	reader   *bufio.Reader
}

func NewApp(cfg *Config, log logging.Logger) (*App, error) {
	store := kvstore.Open(cfg.StateFile)

	sb, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	holder := session.NewHolder()
	backend := auth.NewSupabaseBackend(sb)
	attempts := auth.NewAttemptTracker(store)

	tq := telemetry.NewQueue(telemetry.NewSupabaseSink(sb), log, 16)

	deviceID := loadDeviceID(store)
	api := auth.NewAPI(backend, holder, attempts, tq, log, deviceID)
	gate := auth.NewGate(api, store, log)

	ef := media.NewEdgeClient(cfg.EdgeBaseURL, holder.AccessToken)
	gallery := media.NewGallery(sb)
	resolver := media.NewResolver(sb.Storage, cfg.SupabaseURL, "tmp-uploads", "girls-media")
	uploader := media.NewUploader(ef, gallery, log)

	app := &App{
		cfg:      cfg,
		log:      log,
		store:    store,
		holder:   holder,
		backend:  backend,
		api:      api,
		gate:     gate,
		ef:       ef,
		gallery:  gallery,
		resolver: resolver,
		uploader: uploader,
		tq:       tq,
		reader:   bufio.NewReader(os.Stdin),
	}
	app.restoreSession()
	return app, nil
}

// Close flushes telemetry.
func (a *App) Close() {
	a.tq.Close()
}

func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.usage()
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return a.cmdLogin(ctx, rest)
	case "login-otp":
		return a.cmdLoginOTP(ctx, rest)
	case "logout":
		return a.cmdLogout(ctx)
	case "status":
		return a.cmdStatus(ctx)
	case "list":
		return a.cmdList(ctx)
	case "quota":
		return a.cmdQuota(ctx)
	case "upload":
		return a.cmdUpload(ctx, rest)
	case "move":
		return a.cmdMove(ctx, rest)
	case "remove":
		return a.cmdRemove(ctx, rest)
	default:
		return a.usage()
	}
}

func (a *App) usage() error {
	fmt.Println(`usage: partnerctl <command>

  login <email>           sign in with a password
  login-otp <email>       sign in with an emailed code
  logout                  sign out and clear local state
  status                  show the authorization state
  list                    list the profile's media
  quota                   show media usage against the limit
  upload <file> [secs]    upload a photo, or a video with its duration
  move <from> <to>        move a media item to a new position
  remove <media-id>       remove a pending or rejected item`)
	return nil
}

func (a *App) cmdLogin(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: login <email>")
	}
	password, err := getPassword("Enter password:")
	if err != nil {
		return err
	}

	res := a.api.SignIn(ctx, args[0], password)
	return a.afterLogin(ctx, res)
}

func (a *App) cmdLoginOTP(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: login-otp <email>")
	}
	if res := a.api.SendOTP(ctx, args[0]); !res.Success {
		return fmt.Errorf("%s", res.Error.Message)
	}
	code, err := getLine(a.reader, "Enter the 6-digit code from your email:")
	if err != nil {
		return err
	}

	res := a.api.VerifyOTP(ctx, args[0], code)
	return a.afterLogin(ctx, res)
}

func (a *App) afterLogin(ctx context.Context, res auth.Result) error {
	if !res.Success {
		return fmt.Errorf("%s", res.Error.Message)
	}
	a.persistSession()
	a.gate.Invalidate()
	if a.gate.OnShow(ctx) != auth.StateAuthorized {
		return fmt.Errorf("account is not authorized")
	}
	fmt.Println("Signed in.")
	return nil
}

func (a *App) cmdLogout(ctx context.Context) error {
	err := a.api.SignOut(ctx)
	_ = a.store.Delete(sessionKey)
	a.gate.Invalidate()
	if err != nil {
		a.log.Warn(ctx, "remote logout failed, local state cleared", "error", err)
	}
	fmt.Println("Signed out.")
	return nil
}

func (a *App) cmdStatus(ctx context.Context) error {
	state := a.gate.OnShow(ctx)
	fmt.Printf("state: %s\n", state)
	if girlID := a.gate.GirlID(); girlID != "" {
		fmt.Printf("profile: %s\n", girlID)
	}
	return nil
}

func (a *App) cmdList(ctx context.Context) error {
	girlID, err := a.requireProfile(ctx)
	if err != nil {
		return err
	}
	items, err := a.gallery.List(girlID)
	if err != nil {
		return err
	}
	for i, item := range items {
		url, err := a.resolver.URL(item)
		if err != nil {
			a.log.Debug(ctx, "url resolution failed", "media_id", item.ID.String(), "error", err)
		}
		fmt.Printf("%2d  %s  %-10s  %-8s  %s\n", i, item.ID, item.Kind, item.Status, url)
	}
	return nil
}

func (a *App) cmdQuota(ctx context.Context) error {
	girlID, err := a.requireProfile(ctx)
	if err != nil {
		return err
	}
	count, max, err := a.gallery.Quota(girlID)
	if err != nil {
		return err
	}
	fmt.Printf("%d of %d used\n", count, max)
	return nil
}

func (a *App) cmdUpload(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: upload <file> [durationSeconds]")
	}
	girlID, err := a.requireProfile(ctx)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	asset := media.Asset{
		Name: filepath.Base(args[0]),
		Data: data,
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(args[0])), ".")
	switch ext {
	case "mp4", "mov":
		if len(args) != 2 {
			return fmt.Errorf("videos need a duration: upload <file> <durationSeconds>")
		}
		secs, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		asset.Kind = models.KindVideo
		asset.Ext = ext
		asset.Mime = "video/" + ext
		asset.Duration = time.Duration(secs) * time.Second
	default:
		asset.Kind = models.KindImage
	}

	if err := a.uploader.UploadBatch(ctx, girlID, []media.Asset{asset}); err != nil {
		return err
	}
	for _, t := range a.uploader.Tasks() {
		switch t.State {
		case media.TaskError:
			return fmt.Errorf("%s: %s", t.Name, media.UserMessage(t.Err))
		case media.TaskSuccess:
			fmt.Printf("uploaded %s as %s\n", t.Name, t.Item.ID)
		}
	}
	return nil
}

func (a *App) cmdMove(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: move <from> <to>")
	}
	from, err1 := strconv.Atoi(args[0])
	to, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		return fmt.Errorf("positions must be integers")
	}

	girlID, err := a.requireProfile(ctx)
	if err != nil {
		return err
	}
	view := media.NewListView(a.ef, a.gallery, a.log, girlID)
	if err := view.Refresh(ctx); err != nil {
		return err
	}
	if err := view.Move(ctx, from, to); err != nil {
		return err
	}
	fmt.Println("Order saved.")
	return nil
}

func (a *App) cmdRemove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: remove <media-id>")
	}
	mediaID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid media id: %w", err)
	}
	if err := a.ef.RemoveTmp(ctx, mediaID); err != nil {
		return err
	}
	fmt.Println("Removed.")
	return nil
}

// requireProfile runs the gate and returns the authorized profile id.
func (a *App) requireProfile(ctx context.Context) (uuid.UUID, error) {
	if a.gate.OnShow(ctx) != auth.StateAuthorized {
		return uuid.Nil, fmt.Errorf("not signed in; run: partnerctl login <email>")
	}
	girlID, err := uuid.Parse(a.gate.GirlID())
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid profile id: %w", err)
	}
	return girlID, nil
}

func (a *App) persistSession() {
	if sess := a.holder.Get(); sess != nil {
		_ = a.store.Set(sessionKey, sess)
	}
}

func (a *App) restoreSession() {
	var sess types.Session
	ok, err := a.store.Get(sessionKey, &sess)
	if err != nil || !ok {
		return
	}
	a.backend.AdoptSession(&sess)
	a.holder.Set(&sess)
}

func loadDeviceID(store *kvstore.Store) string {
	var id string
	ok, err := store.Get(deviceIDKey, &id)
	if err == nil && ok && id != "" {
		return id
	}
	id = uuid.New().String()
	_ = store.Set(deviceIDKey, id)
	return id
}
