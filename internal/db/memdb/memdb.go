// Package memdb - хранилище в памяти с тем же контрактом, что и db.Store.
// Используется в тестах сервисов и при локальной разработке без PostgreSQL.
package memdb

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rajivgeraev/ecoswap-api/internal/db"
	"github.com/rajivgeraev/ecoswap-api/internal/models"
)

var _ db.Repository = (*DB)(nil)

type pair [2]int64

type state struct {
	seq int64

	users      map[int64]models.User
	roles      map[int64][]string
	badges     map[int64]models.Badge
	userBadges map[pair]time.Time

	products  map[int64]models.Product
	favorites map[pair]time.Time

	exchanges   map[int64]models.Exchange
	validations map[pair]models.ExchangeValidation
	ratings     []models.Rating

	chats     map[int64]models.Chat
	messages  []models.Message
	proposals map[int64]models.Proposal

	notifications []models.Notification
	reports       map[int64]models.Report
}

func newState() *state {
	return &state{
		users:       map[int64]models.User{},
		roles:       map[int64][]string{},
		badges:      map[int64]models.Badge{},
		userBadges:  map[pair]time.Time{},
		products:    map[int64]models.Product{},
		favorites:   map[pair]time.Time{},
		exchanges:   map[int64]models.Exchange{},
		validations: map[pair]models.ExchangeValidation{},
		chats:       map[int64]models.Chat{},
		proposals:   map[int64]models.Proposal{},
		reports:     map[int64]models.Report{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *state) clone() *state {
	roles := make(map[int64][]string, len(s.roles))
	for k, v := range s.roles {
		roles[k] = append([]string(nil), v...)
	}
	return &state{
		seq:           s.seq,
		users:         cloneMap(s.users),
		roles:         roles,
		badges:        cloneMap(s.badges),
		userBadges:    cloneMap(s.userBadges),
		products:      cloneMap(s.products),
		favorites:     cloneMap(s.favorites),
		exchanges:     cloneMap(s.exchanges),
		validations:   cloneMap(s.validations),
		ratings:       append([]models.Rating(nil), s.ratings...),
		chats:         cloneMap(s.chats),
		messages:      append([]models.Message(nil), s.messages...),
		proposals:     cloneMap(s.proposals),
		notifications: append([]models.Notification(nil), s.notifications...),
		reports:       cloneMap(s.reports),
	}
}

func (s *state) nextID() int64 {
	s.seq++
	return s.seq
}

// DB - потокобезопасное хранилище в памяти
type DB struct {
	mu   *sync.Mutex
	txMu *sync.Mutex
	s    *state
	inTx bool
}

// New создает пустое хранилище
func New() *DB {
	return &DB{mu: &sync.Mutex{}, txMu: &sync.Mutex{}, s: newState()}
}

// RunInTx выполняет fn последовательно с другими транзакциями; при ошибке состояние откатывается
func (d *DB) RunInTx(ctx context.Context, fn func(repo db.Repository) error) error {
	if d.inTx {
		return fn(d)
	}

	d.txMu.Lock()
	defer d.txMu.Unlock()

	d.mu.Lock()
	snapshot := d.s.clone()
	d.mu.Unlock()

	if err := fn(&DB{mu: d.mu, txMu: d.txMu, s: d.s, inTx: true}); err != nil {
		d.mu.Lock()
		*d.s = *snapshot
		d.mu.Unlock()
		return err
	}
	return nil
}

// AddUser добавляет пользователя и возвращает его с присвоенным ID
func (d *DB) AddUser(u models.User) models.User {
	d.mu.Lock()
	defer d.mu.Unlock()
	if u.ID == 0 {
		u.ID = d.s.nextID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	d.s.users[u.ID] = u
	return u
}

// AddRole назначает пользователю активную роль
func (d *DB) AddRole(userID int64, role string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.s.roles[userID] = append(d.s.roles[userID], role)
}

// AddBadge регистрирует insignia в каталоге
func (d *DB) AddBadge(name string) models.Badge {
	d.mu.Lock()
	defer d.mu.Unlock()
	b := models.Badge{ID: d.s.nextID(), Name: name}
	d.s.badges[b.ID] = b
	return b
}

// SetChatActive меняет флаг activo чата
func (d *DB) SetChatActive(chatID int64, active bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if c, ok := d.s.chats[chatID]; ok {
		c.Active = active
		d.s.chats[chatID] = c
	}
}

// AddExchange сохраняет обмен как есть, без проверок
func (d *DB) AddExchange(e models.Exchange) models.Exchange {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e.ID == 0 {
		e.ID = d.s.nextID()
	}
	now := time.Now()
	if e.ProposedAt.IsZero() {
		e.ProposedAt = now
	}
	e.UpdatedAt = now
	d.s.exchanges[e.ID] = e
	return e
}

// Notifications возвращает все сохраненные уведомления пользователя
func (d *DB) Notifications(userID int64) []models.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []models.Notification
	for _, n := range d.s.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// Messages возвращает все сообщения чата в порядке отправки
func (d *DB) Messages(chatID int64) []models.Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []models.Message
	for _, m := range d.s.messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

// --- Пользователи ---

func (d *DB) GetUser(ctx context.Context, id int64) (*models.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.s.users[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &u, nil
}

func (d *DB) LockUser(ctx context.Context, id int64) (*models.User, error) {
	return d.GetUser(ctx, id)
}

func (d *DB) GetUserByAuth(ctx context.Context, authID uuid.UUID, email string) (*models.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var byEmail *models.User
	for _, u := range d.s.users {
		if u.AuthID != nil && *u.AuthID == authID {
			return &u, nil
		}
		if email != "" && strings.EqualFold(u.Email, email) && byEmail == nil {
			found := u
			byEmail = &found
		}
	}
	if byEmail == nil {
		return nil, db.ErrNotFound
	}
	return byEmail, nil
}

func (d *DB) ListActiveRoleNames(ctx context.Context, userID int64) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.s.roles[userID]...), nil
}

func (d *DB) IncrementExchangeStats(ctx context.Context, userID int64, ecoPoints int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.s.users[userID]
	if !ok {
		return db.ErrNotFound
	}
	u.TotalExchanges++
	u.EcoPoints += ecoPoints
	d.s.users[userID] = u
	return nil
}

func (d *DB) SetUserRating(ctx context.Context, userID int64, average float64) error {
	return d.updateUser(userID, func(u *models.User) { u.AverageRating = average })
}

func (d *DB) SetUserVerified(ctx context.Context, userID int64, verified bool) error {
	return d.updateUser(userID, func(u *models.User) { u.Verified = verified })
}

func (d *DB) SetUserActive(ctx context.Context, userID int64, active bool) error {
	return d.updateUser(userID, func(u *models.User) { u.Active = active })
}

func (d *DB) updateUser(userID int64, fn func(u *models.User)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.s.users[userID]
	if !ok {
		return db.ErrNotFound
	}
	fn(&u)
	d.s.users[userID] = u
	return nil
}

func (d *DB) GetBadgeByName(ctx context.Context, name string) (*models.Badge, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, b := range d.s.badges {
		if b.Name == name {
			return &b, nil
		}
	}
	return nil, db.ErrNotFound
}

func (d *DB) GrantBadge(ctx context.Context, userID, badgeID int64) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := pair{userID, badgeID}
	if _, ok := d.s.userBadges[key]; ok {
		return false, nil
	}
	d.s.userBadges[key] = time.Now()
	return true, nil
}

func (d *DB) ListUserBadges(ctx context.Context, userID int64) ([]models.Badge, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	badges := []models.Badge{}
	for key, at := range d.s.userBadges {
		if key[0] != userID {
			continue
		}
		b := d.s.badges[key[1]]
		earned := at
		b.EarnedAt = &earned
		badges = append(badges, b)
	}
	sort.Slice(badges, func(i, j int) bool { return badges[i].ID < badges[j].ID })
	return badges, nil
}

// --- Товары ---

func (d *DB) CreateProduct(ctx context.Context, p *models.Product) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	p.ID = d.s.nextID()
	p.TotalLikes = 0
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	d.s.products[p.ID] = *p
	return nil
}

func (d *DB) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.s.products[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &p, nil
}

func (d *DB) ListProducts(ctx context.Context, f models.ProductFilter) ([]models.Product, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	products := []models.Product{}
	for _, p := range d.s.products {
		if f.OwnerID != 0 && p.OwnerID != f.OwnerID {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.TransactionType != "" && p.TransactionType != f.TransactionType {
			continue
		}
		if f.Publication != "" && p.Publication != f.Publication {
			continue
		}
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID > products[j].ID })

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	if f.Offset >= len(products) {
		return []models.Product{}, nil
	}
	products = products[f.Offset:]
	if len(products) > limit {
		products = products[:limit]
	}
	return products, nil
}

func (d *DB) SetProductsPublication(ctx context.Context, ids []int64, publication string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, id := range ids {
		if p, ok := d.s.products[id]; ok {
			p.Publication = publication
			p.UpdatedAt = time.Now()
			d.s.products[id] = p
		}
	}
	return nil
}

func (d *DB) AddFavorite(ctx context.Context, userID, productID int64) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := pair{userID, productID}
	if _, ok := d.s.favorites[key]; ok {
		return false, nil
	}
	d.s.favorites[key] = time.Now()
	if p, ok := d.s.products[productID]; ok {
		p.TotalLikes++
		d.s.products[productID] = p
	}
	return true, nil
}

func (d *DB) RemoveFavorite(ctx context.Context, userID, productID int64) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := pair{userID, productID}
	if _, ok := d.s.favorites[key]; !ok {
		return false, nil
	}
	delete(d.s.favorites, key)
	if p, ok := d.s.products[productID]; ok && p.TotalLikes > 0 {
		p.TotalLikes--
		d.s.products[productID] = p
	}
	return true, nil
}

func (d *DB) ListFavoriteProducts(ctx context.Context, userID int64) ([]models.Product, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	products := []models.Product{}
	for key := range d.s.favorites {
		if key[0] != userID {
			continue
		}
		if p, ok := d.s.products[key[1]]; ok {
			products = append(products, p)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID > products[j].ID })
	return products, nil
}

// --- Обмены ---

func (d *DB) CreateExchange(ctx context.Context, e *models.Exchange) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	e.ID = d.s.nextID()
	e.ProposedAt = time.Now()
	e.UpdatedAt = e.ProposedAt
	d.s.exchanges[e.ID] = *e
	return nil
}

func (d *DB) GetExchange(ctx context.Context, id int64) (*models.Exchange, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.s.exchanges[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &e, nil
}

// LockExchange - транзакции и так выполняются последовательно
func (d *DB) LockExchange(ctx context.Context, id int64) (*models.Exchange, error) {
	return d.GetExchange(ctx, id)
}

func (d *DB) FindOpenExchange(ctx context.Context, proposerID, receiverID, productID int64) (*models.Exchange, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, e := range d.s.exchanges {
		if e.ProposerID == proposerID && e.ReceiverID == receiverID && e.OfferedProductID == productID &&
			!models.IsExchangeTerminal(e.Status) {
			return &e, nil
		}
	}
	return nil, db.ErrNotFound
}

func (d *DB) ListExchangesForUser(ctx context.Context, userID int64, f db.ExchangeFilter) ([]models.Exchange, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	exchanges := []models.Exchange{}
	for _, e := range d.s.exchanges {
		switch f.Role {
		case db.RoleSent:
			if e.ProposerID != userID {
				continue
			}
		case db.RoleReceived:
			if e.ReceiverID != userID {
				continue
			}
		default:
			if !e.IsParticipant(userID) {
				continue
			}
		}
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		exchanges = append(exchanges, e)
	}
	sort.Slice(exchanges, func(i, j int) bool { return exchanges[i].ID > exchanges[j].ID })
	return exchanges, nil
}

func (d *DB) UpdateExchange(ctx context.Context, e *models.Exchange) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.s.exchanges[e.ID]; !ok {
		return db.ErrNotFound
	}
	e.UpdatedAt = time.Now()
	d.s.exchanges[e.ID] = *e
	return nil
}

func (d *DB) UpsertValidation(ctx context.Context, v *models.ExchangeValidation) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := pair{v.ExchangeID, v.UserID}
	if prev, ok := d.s.validations[key]; ok {
		v.ID = prev.ID
	} else {
		v.ID = d.s.nextID()
	}
	v.CreatedAt = time.Now()
	d.s.validations[key] = *v
	return nil
}

func (d *DB) ListValidations(ctx context.Context, exchangeID int64) ([]models.ExchangeValidation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	validations := []models.ExchangeValidation{}
	for key, v := range d.s.validations {
		if key[0] == exchangeID {
			validations = append(validations, v)
		}
	}
	sort.Slice(validations, func(i, j int) bool { return validations[i].ID < validations[j].ID })
	return validations, nil
}

func (d *DB) GetRating(ctx context.Context, exchangeID, raterID int64) (*models.Rating, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, r := range d.s.ratings {
		if r.ExchangeID == exchangeID && r.RaterID == raterID {
			return &r, nil
		}
	}
	return nil, db.ErrNotFound
}

func (d *DB) InsertRating(ctx context.Context, r *models.Rating) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, existing := range d.s.ratings {
		if existing.ExchangeID == r.ExchangeID && existing.RaterID == r.RaterID {
			return db.ErrDuplicate
		}
	}
	r.ID = d.s.nextID()
	r.CreatedAt = time.Now()
	d.s.ratings = append(d.s.ratings, *r)
	return nil
}

func (d *DB) ListRatingScores(ctx context.Context, rateeID int64) ([]int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	scores := []int{}
	for _, r := range d.s.ratings {
		if r.RateeID == rateeID {
			scores = append(scores, r.Score)
		}
	}
	return scores, nil
}

// --- Чаты ---

func (d *DB) withParticipants(c models.Chat) models.Chat {
	if e, ok := d.s.exchanges[c.ExchangeID]; ok {
		c.ProposerID = e.ProposerID
		c.ReceiverID = e.ReceiverID
		c.ExchangeStatus = e.Status
	}
	return c
}

func (d *DB) CreateChat(ctx context.Context, c *models.Chat) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, existing := range d.s.chats {
		if existing.ExchangeID == c.ExchangeID {
			return db.ErrDuplicate
		}
	}
	c.ID = d.s.nextID()
	c.Active = true
	c.CreatedAt = time.Now()
	d.s.chats[c.ID] = models.Chat{ID: c.ID, ExchangeID: c.ExchangeID, Active: true, CreatedAt: c.CreatedAt}
	*c = d.withParticipants(*c)
	return nil
}

func (d *DB) GetChat(ctx context.Context, id int64) (*models.Chat, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.s.chats[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	c = d.withParticipants(c)
	return &c, nil
}

func (d *DB) GetChatByExchange(ctx context.Context, exchangeID int64) (*models.Chat, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range d.s.chats {
		if c.ExchangeID == exchangeID {
			c = d.withParticipants(c)
			return &c, nil
		}
	}
	return nil, db.ErrNotFound
}

func (d *DB) ListChatsForUser(ctx context.Context, userID int64) ([]models.Chat, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	chats := []models.Chat{}
	for _, c := range d.s.chats {
		c = d.withParticipants(c)
		if !c.IsParticipant(userID) {
			continue
		}
		for _, m := range d.s.messages {
			if m.ChatID == c.ID && m.SenderID != userID && !m.Read {
				c.UnreadCount++
			}
		}
		chats = append(chats, c)
	}
	sort.Slice(chats, func(i, j int) bool { return chats[i].ID > chats[j].ID })
	return chats, nil
}

func (d *DB) InsertMessage(ctx context.Context, m *models.Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.s.chats[m.ChatID]
	if !ok {
		return db.ErrNotFound
	}
	m.ID = d.s.nextID()
	m.Read = false
	m.SentAt = time.Now()
	d.s.messages = append(d.s.messages, *m)
	sent := m.SentAt
	c.LastMessageAt = &sent
	d.s.chats[c.ID] = c
	return nil
}

func (d *DB) ListMessages(ctx context.Context, chatID, beforeID int64, limit int) ([]models.Message, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	messages := []models.Message{}
	for _, m := range d.s.messages {
		if m.ChatID != chatID || (beforeID > 0 && m.ID >= beforeID) {
			continue
		}
		messages = append(messages, m)
	}
	if len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}

func (d *DB) MarkMessagesRead(ctx context.Context, chatID, readerID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, m := range d.s.messages {
		if m.ChatID == chatID && m.SenderID != readerID {
			d.s.messages[i].Read = true
		}
	}
	return nil
}

func (d *DB) CreateProposal(ctx context.Context, p *models.Proposal) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	p.ID = d.s.nextID()
	p.CreatedAt = time.Now()
	d.s.proposals[p.ID] = *p
	return nil
}

func (d *DB) GetProposal(ctx context.Context, id int64) (*models.Proposal, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.s.proposals[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &p, nil
}

func (d *DB) LockProposal(ctx context.Context, id int64) (*models.Proposal, error) {
	return d.GetProposal(ctx, id)
}

func (d *DB) UpdateProposal(ctx context.Context, p *models.Proposal) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.s.proposals[p.ID]; !ok {
		return db.ErrNotFound
	}
	d.s.proposals[p.ID] = *p
	return nil
}

func (d *DB) ListProposals(ctx context.Context, chatID int64, status string) ([]models.Proposal, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	proposals := []models.Proposal{}
	for _, p := range d.s.proposals {
		if p.ChatID != chatID || (status != "" && p.Status != status) {
			continue
		}
		proposals = append(proposals, p)
	}
	sort.Slice(proposals, func(i, j int) bool { return proposals[i].ID > proposals[j].ID })
	return proposals, nil
}

// --- Уведомления ---

func (d *DB) InsertNotification(ctx context.Context, n *models.Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	n.ID = d.s.nextID()
	n.Read = false
	n.CreatedAt = time.Now()
	d.s.notifications = append(d.s.notifications, *n)
	return nil
}

func (d *DB) ListNotifications(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if limit <= 0 {
		limit = 20
	}
	notifications := []models.Notification{}
	for i := len(d.s.notifications) - 1; i >= 0; i-- {
		n := d.s.notifications[i]
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		notifications = append(notifications, n)
	}
	if offset >= len(notifications) {
		return []models.Notification{}, nil
	}
	notifications = notifications[offset:]
	if len(notifications) > limit {
		notifications = notifications[:limit]
	}
	return notifications, nil
}

func (d *DB) MarkNotificationRead(ctx context.Context, userID, id int64) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, n := range d.s.notifications {
		if n.ID == id && n.UserID == userID {
			d.s.notifications[i].Read = true
			return true, nil
		}
	}
	return false, nil
}

func (d *DB) MarkAllNotificationsRead(ctx context.Context, userID int64) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var n int64
	for i, notif := range d.s.notifications {
		if notif.UserID == userID && !notif.Read {
			d.s.notifications[i].Read = true
			n++
		}
	}
	return n, nil
}

// --- Жалобы ---

func (d *DB) CreateReport(ctx context.Context, r *models.Report) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	r.ID = d.s.nextID()
	r.CreatedAt = time.Now()
	d.s.reports[r.ID] = *r
	return nil
}

func (d *DB) GetReport(ctx context.Context, id int64) (*models.Report, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.s.reports[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &r, nil
}

func (d *DB) ListReports(ctx context.Context, status string) ([]models.Report, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	reports := []models.Report{}
	for _, r := range d.s.reports {
		if status != "" && r.Status != status {
			continue
		}
		reports = append(reports, r)
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].ID > reports[j].ID })
	return reports, nil
}

func (d *DB) UpdateReport(ctx context.Context, r *models.Report) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.s.reports[r.ID]; !ok {
		return db.ErrNotFound
	}
	d.s.reports[r.ID] = *r
	return nil
}

func (d *DB) CountResolvedReportsAgainst(ctx context.Context, userID int64) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, r := range d.s.reports {
		if r.ReportedUserID == userID && r.Status == models.ReportResolved {
			n++
		}
	}
	return n, nil
}
