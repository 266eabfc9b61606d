package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"makan-match/internal/catalog"
	"makan-match/internal/domain"
)

// CatalogSchema crea las tablas del catalogo. Solo guarda contenido editorial:
// respuestas y resultados de usuarios nunca se persisten.
const CatalogSchema = `
CREATE TABLE IF NOT EXISTS dishes (
	id                 TEXT PRIMARY KEY,
	position           INT NOT NULL,
	emoji              TEXT NOT NULL DEFAULT '',
	name               TEXT NOT NULL,
	chinese_name       TEXT NOT NULL DEFAULT '',
	category           TEXT NOT NULL DEFAULT '',
	description        TEXT NOT NULL DEFAULT '',
	quote              TEXT NOT NULL DEFAULT '',
	personality_traits TEXT[] NOT NULL DEFAULT '{}',
	attributes         JSONB NOT NULL,
	meme               JSONB
);
CREATE TABLE IF NOT EXISTS dish_modifiers (
	dish_id           TEXT NOT NULL REFERENCES dishes(id) ON DELETE CASCADE,
	position          INT NOT NULL,
	id                TEXT NOT NULL,
	name              TEXT NOT NULL,
	description       TEXT NOT NULL DEFAULT '',
	trigger_trait     TEXT NOT NULL,
	trigger_threshold DOUBLE PRECISION NOT NULL,
	modifier_traits   JSONB NOT NULL,
	meme_caption      TEXT NOT NULL DEFAULT '',
	emoji_combo       TEXT[] NOT NULL DEFAULT '{}',
	PRIMARY KEY (dish_id, id)
);
CREATE TABLE IF NOT EXISTS questions (
	id       TEXT PRIMARY KEY,
	position INT NOT NULL,
	prompt   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS answers (
	question_id TEXT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
	position    INT NOT NULL,
	id          TEXT NOT NULL,
	text        TEXT NOT NULL,
	traits      JSONB NOT NULL DEFAULT '{}',
	PRIMARY KEY (question_id, id)
);
CREATE TABLE IF NOT EXISTS classic_pairings (
	dish_id    TEXT NOT NULL REFERENCES dishes(id) ON DELETE CASCADE,
	partner_id TEXT NOT NULL REFERENCES dishes(id) ON DELETE CASCADE,
	position   INT NOT NULL,
	reason     TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (dish_id, partner_id)
);
`

type CatalogRepository interface {
	EnsureSchema(ctx context.Context) error
	Seed(ctx context.Context, cat *catalog.Catalog) error
	LoadCatalog(ctx context.Context) (*catalog.Catalog, error)
}

type PgCatalogRepository struct {
	pool *pgxpool.Pool
}

func NewPgCatalogRepository(pool *pgxpool.Pool) *PgCatalogRepository {
	return &PgCatalogRepository{pool: pool}
}

func (r *PgCatalogRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, CatalogSchema)
	return err
}

// Seed reemplaza el contenido del catalogo en una sola transaccion.
func (r *PgCatalogRepository) Seed(ctx context.Context, cat *catalog.Catalog) error {
	if cat == nil {
		return fmt.Errorf("seed: nil catalog")
	}
	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM classic_pairings`)
	batch.Queue(`DELETE FROM answers`)
	batch.Queue(`DELETE FROM questions`)
	batch.Queue(`DELETE FROM dish_modifiers`)
	batch.Queue(`DELETE FROM dishes`)

	for i, d := range cat.Dishes() {
		attrs, err := json.Marshal(d.Attributes)
		if err != nil {
			return err
		}
		var meme []byte
		if d.Meme != nil {
			if meme, err = json.Marshal(d.Meme); err != nil {
				return err
			}
		}
		batch.Queue(`
			INSERT INTO dishes (id, position, emoji, name, chinese_name, category, description, quote, personality_traits, attributes, meme)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, d.ID, i, d.Emoji, d.Name, d.ChineseName, d.Category, d.Description, d.Quote, nonNil(d.PersonalityTraits), attrs, meme)

		for j, m := range d.Modifiers {
			traits, err := json.Marshal(m.ModifierTraits)
			if err != nil {
				return err
			}
			batch.Queue(`
				INSERT INTO dish_modifiers (dish_id, position, id, name, description, trigger_trait, trigger_threshold, modifier_traits, meme_caption, emoji_combo)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			`, d.ID, j, m.ID, m.Name, m.Description, string(m.TriggerTrait), m.TriggerThreshold, traits, m.MemeCaption, nonNil(m.EmojiCombo))
		}
	}

	for i, q := range cat.Questions() {
		batch.Queue(`INSERT INTO questions (id, position, prompt) VALUES ($1, $2, $3)`, q.ID, i, q.Prompt)
		for j, a := range q.Answers {
			traits, err := json.Marshal(a.Traits)
			if err != nil {
				return err
			}
			batch.Queue(`
				INSERT INTO answers (question_id, position, id, text, traits)
				VALUES ($1, $2, $3, $4, $5)
			`, q.ID, j, a.ID, a.Text, traits)
		}
	}

	pos := 0
	for _, cp := range cat.ClassicPairings() {
		for _, p := range cp.Partners {
			batch.Queue(`
				INSERT INTO classic_pairings (dish_id, partner_id, position, reason)
				VALUES ($1, $2, $3, $4)
			`, cp.DishID, p.DishID, pos, p.Reason)
			pos++
		}
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	return tx.Commit(ctx)
}

// LoadCatalog lee el catalogo completo y lo valida igual que el YAML embebido.
func (r *PgCatalogRepository) LoadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	dishes, err := r.listDishes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dishes: %w", err)
	}
	mods, err := r.listModifiers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load modifiers: %w", err)
	}
	questions, err := r.listQuestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	answers, err := r.listAnswers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}
	classics, err := r.listClassics(ctx)
	if err != nil {
		return nil, fmt.Errorf("load classic pairings: %w", err)
	}
	d, q, c := assembleCatalog(dishes, mods, questions, answers, classics)
	return catalog.New(d, q, c)
}

func (r *PgCatalogRepository) listDishes(ctx context.Context) ([]domain.Dish, error) {
	const query = `
		SELECT id, emoji, name, chinese_name, category, description, quote, personality_traits, attributes, meme
		FROM dishes
		ORDER BY position ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dishes []domain.Dish
	for rows.Next() {
		var (
			d     domain.Dish
			attrs []byte
			meme  []byte
		)
		if err := rows.Scan(
			&d.ID,
			&d.Emoji,
			&d.Name,
			&d.ChineseName,
			&d.Category,
			&d.Description,
			&d.Quote,
			&d.PersonalityTraits,
			&attrs,
			&meme,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(attrs, &d.Attributes); err != nil {
			return nil, fmt.Errorf("dish %q attributes: %w", d.ID, err)
		}
		if len(meme) > 0 {
			d.Meme = &domain.MemeContent{}
			if err := json.Unmarshal(meme, d.Meme); err != nil {
				return nil, fmt.Errorf("dish %q meme: %w", d.ID, err)
			}
		}
		dishes = append(dishes, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return dishes, nil
}

type modifierRow struct {
	dishID   string
	modifier domain.Modifier
}

func (r *PgCatalogRepository) listModifiers(ctx context.Context) ([]modifierRow, error) {
	const query = `
		SELECT dish_id, id, name, description, trigger_trait, trigger_threshold, modifier_traits, meme_caption, emoji_combo
		FROM dish_modifiers
		ORDER BY dish_id ASC, position ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []modifierRow
	for rows.Next() {
		var (
			row     modifierRow
			trigger string
			traits  []byte
		)
		m := &row.modifier
		if err := rows.Scan(
			&row.dishID,
			&m.ID,
			&m.Name,
			&m.Description,
			&trigger,
			&m.TriggerThreshold,
			&traits,
			&m.MemeCaption,
			&m.EmojiCombo,
		); err != nil {
			return nil, err
		}
		m.TriggerTrait = domain.TraitDimension(trigger)
		if err := json.Unmarshal(traits, &m.ModifierTraits); err != nil {
			return nil, fmt.Errorf("modifier %q traits: %w", m.ID, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PgCatalogRepository) listQuestions(ctx context.Context) ([]domain.Question, error) {
	const query = `
		SELECT id, prompt
		FROM questions
		ORDER BY position ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Question
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.Prompt); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type answerRow struct {
	questionID string
	answer     domain.Answer
}

func (r *PgCatalogRepository) listAnswers(ctx context.Context) ([]answerRow, error) {
	const query = `
		SELECT question_id, id, text, traits
		FROM answers
		ORDER BY question_id ASC, position ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []answerRow
	for rows.Next() {
		var (
			row    answerRow
			traits []byte
		)
		if err := rows.Scan(&row.questionID, &row.answer.ID, &row.answer.Text, &traits); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(traits, &row.answer.Traits); err != nil {
			return nil, fmt.Errorf("answer %s/%s traits: %w", row.questionID, row.answer.ID, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type classicRow struct {
	dishID  string
	partner domain.ClassicPartner
}

func (r *PgCatalogRepository) listClassics(ctx context.Context) ([]classicRow, error) {
	const query = `
		SELECT dish_id, partner_id, reason
		FROM classic_pairings
		ORDER BY position ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []classicRow
	for rows.Next() {
		var row classicRow
		if err := rows.Scan(&row.dishID, &row.partner.DishID, &row.partner.Reason); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// assembleCatalog cuelga modificadores y respuestas de su padre conservando el orden
// de lectura. Filas huerfanas se descartan; la validacion del catalogo hace el resto.
func assembleCatalog(dishes []domain.Dish, mods []modifierRow, questions []domain.Question, answers []answerRow, classics []classicRow) ([]domain.Dish, []domain.Question, []domain.ClassicPairing) {
	dishIdx := make(map[string]int, len(dishes))
	for i, d := range dishes {
		dishIdx[d.ID] = i
	}
	for _, row := range mods {
		if i, ok := dishIdx[row.dishID]; ok {
			dishes[i].Modifiers = append(dishes[i].Modifiers, row.modifier)
		}
	}

	qIdx := make(map[string]int, len(questions))
	for i, q := range questions {
		qIdx[q.ID] = i
	}
	for _, row := range answers {
		if i, ok := qIdx[row.questionID]; ok {
			questions[i].Answers = append(questions[i].Answers, row.answer)
		}
	}

	var pairings []domain.ClassicPairing
	pIdx := make(map[string]int)
	for _, row := range classics {
		i, ok := pIdx[row.dishID]
		if !ok {
			i = len(pairings)
			pIdx[row.dishID] = i
			pairings = append(pairings, domain.ClassicPairing{DishID: row.dishID})
		}
		pairings[i].Partners = append(pairings[i].Partners, row.partner)
	}
	return dishes, questions, pairings
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
