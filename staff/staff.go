package staff

import (
	"context"
	"errors"
	"net/mail"
	"slices"
	"strings"
	"time"

	"cruiseops/globals"
	"cruiseops/models"
	"cruiseops/utils"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

var (
	staffRoles = []string{globals.RoleAgent, globals.RoleStaff, globals.RoleAdmin}
	priorities = []string{models.PriorityNormal, models.PriorityHigh, models.PriorityUrgent}
)

type Service struct {
	store Store
	cost  int
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, cost: bcrypt.DefaultCost, now: time.Now}
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return "", utils.Invalid("email is not valid")
	}
	return email, nil
}

func (s *Service) hash(password string) (string, error) {
	if len(password) < minPasswordLen {
		return "", utils.Invalid("password must be at least %d characters", minPasswordLen)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func validRole(role string) (string, error) {
	role = utils.LowerCode(role)
	if role == "" {
		return globals.RoleAgent, nil
	}
	if !slices.Contains(staffRoles, role) {
		return "", utils.Invalid("role must be one of agent|staff|admin")
	}
	return role, nil
}

type UserInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

func (s *Service) CreateUser(ctx context.Context, tenant string, in UserInput) (models.StaffUser, error) {
	now := s.now().UTC()
	u := models.StaffUser{
		ID:          utils.NewID(),
		DisplayName: strings.TrimSpace(in.DisplayName),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	var err error
	if u.Email, err = normalizeEmail(in.Email); err != nil {
		return u, err
	}
	if u.Role, err = validRole(in.Role); err != nil {
		return u, err
	}
	if u.PasswordHash, err = s.hash(in.Password); err != nil {
		return u, err
	}
	return u, s.store.InsertUser(ctx, tenant, u)
}

func (s *Service) Users(ctx context.Context, tenant string) ([]models.StaffUser, error) {
	return s.store.ListUsers(ctx, tenant)
}

func (s *Service) User(ctx context.Context, tenant, id string) (models.StaffUser, error) {
	u, err := s.store.GetUser(ctx, tenant, id)
	if err != nil {
		return models.StaffUser{}, err
	}
	if u == nil {
		return models.StaffUser{}, utils.NotFound("Staff user not found")
	}
	return *u, nil
}

type UserPatch struct {
	DisplayName *string `json:"display_name"`
	Role        *string `json:"role"`
	Disabled    *bool   `json:"disabled"`
	Password    *string `json:"password"`
}

func (s *Service) PatchUser(ctx context.Context, tenant, id string, p UserPatch) (models.StaffUser, error) {
	u, err := s.User(ctx, tenant, id)
	if err != nil {
		return u, err
	}
	if p.DisplayName != nil {
		u.DisplayName = strings.TrimSpace(*p.DisplayName)
	}
	if p.Role != nil {
		if utils.LowerCode(*p.Role) == "" {
			return u, utils.Invalid("role must be one of agent|staff|admin")
		}
		if u.Role, err = validRole(*p.Role); err != nil {
			return u, err
		}
	}
	if p.Disabled != nil {
		u.Disabled = *p.Disabled
	}
	if p.Password != nil {
		if u.PasswordHash, err = s.hash(*p.Password); err != nil {
			return u, err
		}
	}
	u.UpdatedAt = s.now().UTC()
	return u, s.store.ReplaceUser(ctx, tenant, u)
}

// Authenticate checks credentials. Unknown users and wrong passwords look the same
// to the caller.
func (s *Service) Authenticate(ctx context.Context, tenant, email, password string) (models.StaffUser, error) {
	invalid := utils.Unauthorized("Invalid email or password")
	u, err := s.store.GetUserByEmail(ctx, tenant, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return models.StaffUser{}, err
	}
	if u == nil {
		return models.StaffUser{}, invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return models.StaffUser{}, invalid
		}
		return models.StaffUser{}, err
	}
	if u.Disabled {
		return models.StaffUser{}, utils.Forbidden("User is disabled")
	}
	return *u, nil
}

type GroupInput struct {
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

func cleanPermissions(in []string) []string {
	out := []string{}
	for _, p := range in {
		p = strings.TrimSpace(p)
		if p != "" && !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

func (s *Service) CreateGroup(ctx context.Context, tenant string, in GroupInput) (models.StaffGroup, error) {
	g := models.StaffGroup{
		ID:          utils.NewID(),
		Code:        utils.LowerCode(in.Code),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Permissions: cleanPermissions(in.Permissions),
		CreatedAt:   s.now().UTC(),
	}
	if g.Code == "" || g.Name == "" {
		return g, utils.Invalid("code and name are required")
	}
	return g, s.store.InsertGroup(ctx, tenant, g)
}

func (s *Service) Groups(ctx context.Context, tenant string) ([]models.StaffGroup, error) {
	return s.store.ListGroups(ctx, tenant)
}

func (s *Service) group(ctx context.Context, tenant, id string) (models.StaffGroup, error) {
	g, err := s.store.GetGroup(ctx, tenant, id)
	if err != nil {
		return models.StaffGroup{}, err
	}
	if g == nil {
		return models.StaffGroup{}, utils.NotFound("Group not found")
	}
	return *g, nil
}

type GroupPatch struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Permissions *[]string `json:"permissions"`
}

func (s *Service) PatchGroup(ctx context.Context, tenant, id string, p GroupPatch) (models.StaffGroup, error) {
	g, err := s.group(ctx, tenant, id)
	if err != nil {
		return g, err
	}
	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return g, utils.Invalid("name must not be empty")
		}
		g.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		g.Description = strings.TrimSpace(*p.Description)
	}
	if p.Permissions != nil {
		g.Permissions = cleanPermissions(*p.Permissions)
	}
	return g, s.store.ReplaceGroup(ctx, tenant, g)
}

func (s *Service) AddMember(ctx context.Context, tenant, groupID, userID string) (models.GroupMember, error) {
	if _, err := s.group(ctx, tenant, groupID); err != nil {
		return models.GroupMember{}, err
	}
	if _, err := s.User(ctx, tenant, userID); err != nil {
		return models.GroupMember{}, err
	}
	m := models.GroupMember{GroupID: groupID, UserID: userID, AddedAt: s.now().UTC()}
	return m, s.store.InsertMember(ctx, tenant, m)
}

func (s *Service) Members(ctx context.Context, tenant, groupID string) ([]models.GroupMember, error) {
	if _, err := s.group(ctx, tenant, groupID); err != nil {
		return nil, err
	}
	return s.store.ListMembers(ctx, tenant, groupID)
}

func (s *Service) RemoveMember(ctx context.Context, tenant, groupID, userID string) error {
	ok, err := s.store.DeleteMember(ctx, tenant, groupID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return utils.NotFound("Membership not found")
	}
	return nil
}

type AnnouncementInput struct {
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Priority  string     `json:"priority"`
	ExpiresAt *time.Time `json:"expires_at"`
}

func (s *Service) Announce(ctx context.Context, tenant, createdBy string, in AnnouncementInput) (models.Announcement, error) {
	now := s.now().UTC()
	a := models.Announcement{
		ID:        utils.NewID(),
		Title:     strings.TrimSpace(in.Title),
		Body:      strings.TrimSpace(in.Body),
		Priority:  utils.LowerCode(in.Priority),
		CreatedBy: createdBy,
		CreatedAt: now,
	}
	if a.Title == "" {
		return a, utils.Invalid("title is required")
	}
	if a.Priority == "" {
		a.Priority = models.PriorityNormal
	}
	if !slices.Contains(priorities, a.Priority) {
		return a, utils.Invalid("priority must be one of normal|high|urgent")
	}
	if in.ExpiresAt != nil {
		exp := in.ExpiresAt.UTC()
		if !exp.After(now) {
			return a, utils.Invalid("expires_at must be in the future")
		}
		a.ExpiresAt = &exp
	}
	return a, s.store.InsertAnnouncement(ctx, tenant, a)
}

// Announcements lists unexpired announcements newest first, flagged with whether
// userID has read them.
func (s *Service) Announcements(ctx context.Context, tenant, userID string) ([]models.Announcement, error) {
	items, err := s.store.ActiveAnnouncements(ctx, tenant, s.now().UTC())
	if err != nil {
		return nil, err
	}
	read, err := s.store.ReadIDs(ctx, tenant, userID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Read = read[items[i].ID]
	}
	return items, nil
}

func (s *Service) MarkRead(ctx context.Context, tenant, id, userID string) error {
	a, err := s.store.GetAnnouncement(ctx, tenant, id)
	if err != nil {
		return err
	}
	if a == nil {
		return utils.NotFound("Announcement not found")
	}
	return s.store.MarkRead(ctx, tenant, models.AnnouncementRead{AnnouncementID: id, UserID: userID, ReadAt: s.now().UTC()})
}
