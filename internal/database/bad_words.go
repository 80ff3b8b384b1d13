package database

import (
	"bufio"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

const badWordsURL = "https://raw.githubusercontent.com/LDNOOBW/List-of-Dirty-Naughty-Obscene-and-Otherwise-Bad-Words/refs/heads/master/en"

// SeedBadWords fetches and seeds the chat moderation word list
func (db *DB) SeedBadWords() error {
	// Check if the filter is already populated
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM bad_words").Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check bad words count: %w", err)
	}

	if count > 0 {
		log.Printf("Chat filter already populated with %d words", count)
		return nil
	}

	log.Println("Downloading chat filter word list...")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(badWordsURL)
	if err != nil {
		return fmt.Errorf("failed to download word list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status code from word list URL: %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	wordsAdded := 0

	// Bulk insert inside one transaction
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insertQuery := "INSERT INTO bad_words (word) VALUES (?)"
	rewrittenQuery := db.Dialect.RewriteQuery(insertQuery)

	stmt, err := tx.Prepare(rewrittenQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for scanner.Scan() {
		word := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if word == "" {
			continue
		}

		if _, err := stmt.Exec(word); err != nil {
			// Skip duplicates or errors, continue adding others
			continue
		}
		wordsAdded++
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading word list: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("Chat filter populated with %d words", wordsAdded)
	return nil
}

// IsBadWord checks if a word is in the moderation list
func (db *DB) IsBadWord(word string) (bool, error) {
	cleanWord := strings.TrimSpace(strings.ToLower(word))

	var count int
	query := "SELECT COUNT(*) FROM bad_words WHERE word = ?"
	err := db.QueryRow(query, cleanWord).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check word: %w", err)
	}

	return count > 0, nil
}

// FindBadWords checks each word against the moderation list and
// returns the ones that matched
func (db *DB) FindBadWords(words []string) ([]string, error) {
	if len(words) == 0 {
		return nil, nil
	}

	var flagged []string
	for _, word := range words {
		isBad, err := db.IsBadWord(word)
		if err != nil {
			return nil, err
		}
		if isBad {
			flagged = append(flagged, word)
		}
	}

	return flagged, nil
}
