package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/jolivares/cuaderno/config"
	"github.com/jolivares/cuaderno/pkg/audit"
	"github.com/jolivares/cuaderno/pkg/credential"
	"github.com/jolivares/cuaderno/pkg/queue"
	"github.com/jolivares/cuaderno/pkg/session"
	"github.com/jolivares/cuaderno/pkg/tokens"
)

// app-level container to share constructed components across packages.
// Router modules auto-wire themselves from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	gcsClient   *storage.Client
	esClient    *elasticsearch.Client

	sessions  *session.Manager
	verifyMgr *tokens.VerifyManager
	auditRec  *audit.Recorder
	mailPub   *queue.Publisher
	credStore *credential.Store
)

func SetConfig(c *config.Config) { cfg = c }
func GetConfig() *config.Config  { return cfg }
func SetLogger(l *logrus.Logger) { logger = l }
func GetLogger() *logrus.Logger  { return logger }
func SetPGPool(p *pgxpool.Pool)  { pgPool = p }
func GetPGPool() *pgxpool.Pool   { return pgPool }
func SetRedis(r *redis.Client)   { redisClient = r }
func GetRedis() *redis.Client    { return redisClient }
func SetGCS(s *storage.Client)   { gcsClient = s }
func GetGCS() *storage.Client    { return gcsClient }

func SetES(c *elasticsearch.Client) { esClient = c }
func GetES() *elasticsearch.Client  { return esClient }

func SetSessions(m *session.Manager) { sessions = m }
func GetSessions() *session.Manager  { return sessions }

func SetVerify(m *tokens.VerifyManager) { verifyMgr = m }
func GetVerify() *tokens.VerifyManager  { return verifyMgr }

func SetAudit(r *audit.Recorder) { auditRec = r }
func GetAudit() *audit.Recorder  { return auditRec }

func SetMailPub(p *queue.Publisher) { mailPub = p }
func GetMailPub() *queue.Publisher  { return mailPub }

func SetCreds(s *credential.Store) { credStore = s }
func GetCreds() *credential.Store  { return credStore }
