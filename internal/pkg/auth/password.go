/**
 * 工具类:密码工具
 * @author: sun977
 * @date: 2025.08.29
 * @description: 新密码统一使用 Argon2id，编码格式 $argon2id$v=19$m=..,t=..,p=..$salt$hash
 *   从已有监控前端导入的用户表使用 bcrypt($2y$/$2a$/$2b$)，仍可校验，登录成功后升级为 Argon2id
 * @func:
 * 	1.哈希密码
 * 	2.验证密码(argon2id / bcrypt)
 * 	3.判断是否需要重新哈希
 */
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmptyPassword       = errors.New("password cannot be empty")
	ErrUnsupportedHashType = errors.New("unsupported password hash")
)

// PasswordConfig Argon2id 参数
type PasswordConfig struct {
	Memory      uint32 // KB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// LightPasswordConfig 低开销参数，测试环境使用
var LightPasswordConfig = &PasswordConfig{
	Memory:      8 * 1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// DefaultPasswordConfig 默认参数
var DefaultPasswordConfig = &PasswordConfig{
	Memory:      64 * 1024, // 64MB
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// argon2Hash 解析后的 Argon2id 编码串
type argon2Hash struct {
	params PasswordConfig
	salt   []byte
	key    []byte
}

func (h *argon2Hash) String() string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Iterations,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(h.salt),
		base64.RawStdEncoding.EncodeToString(h.key),
	)
}

func parseArgon2Hash(encoded string) (*argon2Hash, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, errors.New("invalid argon2id hash format")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, fmt.Errorf("invalid version: %w", err)
	}
	if version != argon2.Version {
		return nil, errors.New("incompatible argon2 version")
	}

	h := &argon2Hash{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &h.params.Memory, &h.params.Iterations, &h.params.Parallelism); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, fmt.Errorf("invalid salt: %w", err)
	}
	if h.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return nil, fmt.Errorf("invalid hash: %w", err)
	}
	h.params.SaltLength = uint32(len(h.salt))
	h.params.KeyLength = uint32(len(h.key))
	return h, nil
}

// isBcryptHash 前端生成的 bcrypt 串: $2y$10$...，长度固定 60
func isBcryptHash(encoded string) bool {
	return len(encoded) == 60 &&
		(strings.HasPrefix(encoded, "$2y$") || strings.HasPrefix(encoded, "$2a$") || strings.HasPrefix(encoded, "$2b$"))
}

// PasswordManager 密码管理器
type PasswordManager struct {
	config *PasswordConfig
}

// NewPasswordManager 创建密码管理器，config 为空时使用默认参数
func NewPasswordManager(config *PasswordConfig) *PasswordManager {
	if config == nil {
		config = DefaultPasswordConfig
	}
	return &PasswordManager{config: config}
}

// HashPassword 使用当前参数生成 Argon2id 编码串
func (pm *PasswordManager) HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	salt := make([]byte, pm.config.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	h := &argon2Hash{
		params: *pm.config,
		salt:   salt,
		key:    argon2.IDKey([]byte(password), salt, pm.config.Iterations, pm.config.Memory, pm.config.Parallelism, pm.config.KeyLength),
	}
	return h.String(), nil
}

// VerifyPassword 校验密码，密码不匹配返回 false, nil；编码串无法识别返回错误
func (pm *PasswordManager) VerifyPassword(password, encodedHash string) (bool, error) {
	if password == "" || encodedHash == "" {
		return false, errors.New("password and hash cannot be empty")
	}

	if isBcryptHash(encodedHash) {
		err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, fmt.Errorf("failed to verify bcrypt hash: %w", err)
		}
	}

	if !strings.HasPrefix(encodedHash, "$argon2id$") {
		return false, ErrUnsupportedHashType
	}
	h, err := parseArgon2Hash(encodedHash)
	if err != nil {
		return false, fmt.Errorf("failed to decode hash: %w", err)
	}
	other := argon2.IDKey([]byte(password), h.salt, h.params.Iterations, h.params.Memory, h.params.Parallelism, h.params.KeyLength)
	return subtle.ConstantTimeCompare(h.key, other) == 1, nil
}

// NeedsRehash 编码串不是 Argon2id 或参数与当前配置不同时返回 true
func (pm *PasswordManager) NeedsRehash(encodedHash string) bool {
	h, err := parseArgon2Hash(encodedHash)
	if err != nil {
		return true
	}
	return h.params.Memory != pm.config.Memory ||
		h.params.Iterations != pm.config.Iterations ||
		h.params.Parallelism != pm.config.Parallelism ||
		h.params.KeyLength != pm.config.KeyLength
}
