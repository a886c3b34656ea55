package usecase

import (
	"context"
	"errors"
	"fmt"

	"taskandtime_backend/internal/feature/auth/domain/entity"
	"taskandtime_backend/internal/shared/principal"
)

const (
	msgTeamMemberRegistered     = "Team Member registered successfully"
	msgProjectManagerRegistered = "Project Manager registered successfully"
	msgAdminRegistered          = "Admin registered successfully."
	msgAdminExists              = "Admin already exists"
)

// RegisterInput は登録エンドポイントが受け付ける入力です。
// ロールは持たず、エンドポイント側で決定します。
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Contact  string
}

// RegisterOutcome は登録処理の結果を表します。
// メールアドレスの重複はエラーではなく、Created=false の通常の結果として返します。
type RegisterOutcome struct {
	Created bool
	Message string
}

// AdminSeed は起動時に作成する管理者アカウントの設定です。
type AdminSeed struct {
	Name     string
	Email    string
	Password string
	Contact  string
}

// authUsecase は登録・ログイン・トークン管理のビジネスロジックを実装します。
type authUsecase struct {
	users         UserRepository
	ledger        TokenRepository
	hasher        PasswordHasher
	authenticator Authenticator
	jwtGenerator  JWTGenerator
	admin         AdminSeed
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(
	users UserRepository,
	ledger TokenRepository,
	hasher PasswordHasher,
	authenticator Authenticator,
	jwtGenerator JWTGenerator,
	admin AdminSeed,
) *authUsecase {
	return &authUsecase{
		users:         users,
		ledger:        ledger,
		hasher:        hasher,
		authenticator: authenticator,
		jwtGenerator:  jwtGenerator,
		admin:         admin,
	}
}

// Register はTEAM_MEMBERロールのアカウントを作成します。
func (u *authUsecase) Register(ctx context.Context, in RegisterInput) (RegisterOutcome, error) {
	return u.register(ctx, in, entity.RoleTeamMember, msgTeamMemberRegistered)
}

// RegisterManager はPROJECT_MANAGERロールのアカウントを作成します。
func (u *authUsecase) RegisterManager(ctx context.Context, in RegisterInput) (RegisterOutcome, error) {
	return u.register(ctx, in, entity.RoleProjectManager, msgProjectManagerRegistered)
}

func (u *authUsecase) register(ctx context.Context, in RegisterInput, role entity.Role, okMsg string) (RegisterOutcome, error) {
	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return RegisterOutcome{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hashed,
		Contact:  in.Contact,
		Role:     role,
	}

	// メールアドレスの一意性はストアのユニークインデックスで保証する
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			return RegisterOutcome{Message: "User already exists with email id " + in.Email}, nil
		}
		return RegisterOutcome{}, fmt.Errorf("failed to create user: %w", err)
	}

	return RegisterOutcome{Created: true, Message: okMsg}, nil
}

// Login はユーザーを認証し、新しいアクセストークンを発行します。
// それまで有効だったトークンは新しいトークンの記録と同じトランザクションで
// 失効させるため、有効なトークンは常に高々1つです。
func (u *authUsecase) Login(ctx context.Context, email, password string) (string, error) {
	if err := u.authenticator.Authenticate(ctx, email, password); err != nil {
		return "", err
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to load user: %w", err)
	}

	token, err := u.jwtGenerator.GenerateToken(user.ID, user.Email, user.Role.String())
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	record := &entity.AccessToken{Token: token, UserID: user.ID}
	if err := u.ledger.RotateForUser(ctx, user.ID, record); err != nil {
		return "", fmt.Errorf("failed to record token: %w", err)
	}

	return token, nil
}

// Logout は指定されたトークンを1つだけ失効させます。
func (u *authUsecase) Logout(ctx context.Context, token string) error {
	if err := u.ledger.Revoke(ctx, token); err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return ErrTokenNotFound
		}
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// CreateAdminIfAbsent は管理者アカウントが存在しない場合にのみ作成します。
func (u *authUsecase) CreateAdminIfAbsent(ctx context.Context) (RegisterOutcome, error) {
	_, err := u.users.FindByEmail(ctx, u.admin.Email)
	if err == nil {
		return RegisterOutcome{Message: msgAdminExists}, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return RegisterOutcome{}, fmt.Errorf("failed to look up admin: %w", err)
	}

	hashed, err := u.hasher.Hash(u.admin.Password)
	if err != nil {
		return RegisterOutcome{}, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &entity.User{
		Name:     u.admin.Name,
		Email:    u.admin.Email,
		Password: hashed,
		Contact:  u.admin.Contact,
		Role:     entity.RoleAdmin,
	}
	if err := u.users.Create(ctx, admin); err != nil {
		// 別インスタンスが先に作成した
		if errors.Is(err, ErrEmailAlreadyExists) {
			return RegisterOutcome{Message: msgAdminExists}, nil
		}
		return RegisterOutcome{}, fmt.Errorf("failed to create admin: %w", err)
	}

	return RegisterOutcome{Created: true, Message: msgAdminRegistered}, nil
}

// CurrentUserID はctxに格納された認証済みユーザーをユーザーIDに解決します。
func (u *authUsecase) CurrentUserID(ctx context.Context) (uint, error) {
	email, ok := principal.EmailFrom(ctx)
	if !ok {
		return 0, ErrNoAuthenticatedPrincipal
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("failed to load user: %w", err)
	}
	return user.ID, nil
}
