package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"neomonitor/internal/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileHook 按 "type" 字段把日志写入不同的滚动文件
// access/business/error/system/audit 各自一个文件，其他写入主日志文件
type FileHook struct {
	logConfig *config.LogConfig
	writers   map[LogType]io.Writer
	formatter logrus.Formatter
	mutex     sync.Mutex
}

// 类型日志文件名
var typedLogFiles = map[LogType]string{
	AccessLog:   "access.log",
	BusinessLog: "business.log",
	ErrorLog:    "error.log",
	SystemLog:   "system.log",
	AuditLog:    "audit.log",
}

// NewFileHook 创建一个新的FileHook实例
func NewFileHook(logConfig *config.LogConfig) *FileHook {
	hook := &FileHook{
		logConfig: logConfig,
		writers:   make(map[LogType]io.Writer),
		formatter: &logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		},
	}
	if logConfig.FilePath != "" {
		hook.writers[defaultLog] = hook.newRollingWriter(logConfig.FilePath)
	}
	return hook
}

// defaultLog 未标注类型的日志
const defaultLog LogType = "default"

// Levels 返回此Hook关心的所有日志级别
func (hook *FileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire 在日志触发时执行
func (hook *FileHook) Fire(entry *logrus.Entry) error {
	logType := defaultLog
	switch t := entry.Data["type"].(type) {
	case LogType:
		logType = t
	case string:
		logType = LogType(t)
	}

	formatted, err := hook.formatter.Format(entry)
	if err != nil {
		return err
	}

	hook.mutex.Lock()
	defer hook.mutex.Unlock()

	writer := hook.writerFor(logType)
	if writer == nil {
		return nil
	}
	_, err = writer.Write(formatted)
	return err
}

// writerFor 获取指定类型的writer，不存在则创建，调用方持有锁
func (hook *FileHook) writerFor(logType LogType) io.Writer {
	if writer, ok := hook.writers[logType]; ok {
		return writer
	}
	name, ok := typedLogFiles[logType]
	if !ok || hook.logConfig.FilePath == "" {
		return hook.writers[defaultLog]
	}
	writer := hook.newRollingWriter(filepath.Join(filepath.Dir(hook.logConfig.FilePath), name))
	hook.writers[logType] = writer
	return writer
}

func (hook *FileHook) newRollingWriter(filename string) io.Writer {
	_ = os.MkdirAll(filepath.Dir(filename), 0755)
	return &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    hook.logConfig.MaxSize,
		MaxBackups: hook.logConfig.MaxBackups,
		MaxAge:     hook.logConfig.MaxAge,
		Compress:   hook.logConfig.Compress,
	}
}
