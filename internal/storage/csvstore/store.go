// Package csvstore persists the pipeline tables as date-partitioned CSV
// files: <root>/<entity>/<YYYY-MM-DD>.csv, UTF-8 with a signature BOM,
// header row always present, minimal quoting.
package csvstore

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"tvilstat/internal/domain"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

var (
	hotelsHeader     = []string{"tvil_hotel_id", "name", "address", "city", "url", "rooms_number"}
	roomsHeader      = []string{"tvil_hotel_id", "room_name", "room_id", "free_rooms", "all_rooms", "room_capacity", "price", "url"}
	statisticsHeader = []string{"tvil_hotel_id", "name", "rooms_num", "free_rooms_amount", "max_capacity", "available_rooms_percent", "date", "min_price"}
)

type Store struct{ root string }

// New returns a store rooted at dir (e.g. "tables").
func New(dir string) *Store { return &Store{root: dir} }

func (s *Store) path(entity, date string) string {
	return filepath.Join(s.root, entity, date+".csv")
}

func (s *Store) WriteHotels(date string, hotels []domain.Hotel) error {
	rows := make([][]string, 0, len(hotels))
	for _, h := range hotels {
		rows = append(rows, []string{h.ID, h.Name, h.Address, h.City, h.URL, h.RoomsTotal})
	}
	return writeTable(s.path("hotels", date), hotelsHeader, rows)
}

func (s *Store) ReadHotels(date string) ([]domain.Hotel, error) {
	rows, idx, err := readTable(s.path("hotels", date), hotelsHeader)
	if err != nil {
		return nil, err
	}
	hotels := make([]domain.Hotel, 0, len(rows))
	for _, r := range rows {
		hotels = append(hotels, domain.Hotel{
			ID:         idx.get(r, "tvil_hotel_id"),
			Name:       idx.get(r, "name"),
			Address:    idx.get(r, "address"),
			City:       idx.get(r, "city"),
			URL:        idx.get(r, "url"),
			RoomsTotal: idx.get(r, "rooms_number"),
		})
	}
	return hotels, nil
}

func (s *Store) WriteRooms(date string, rooms []domain.RoomOffer) error {
	rows := make([][]string, 0, len(rooms))
	for _, r := range rooms {
		rows = append(rows, []string{r.HotelID, r.RoomName, r.RoomID, r.FreeRooms, r.AllRooms, r.Capacity, r.Price, r.URL})
	}
	return writeTable(s.path("rooms", date), roomsHeader, rows)
}

func (s *Store) ReadRooms(date string) ([]domain.RoomOffer, error) {
	rows, idx, err := readTable(s.path("rooms", date), roomsHeader)
	if err != nil {
		return nil, err
	}
	rooms := make([]domain.RoomOffer, 0, len(rows))
	for _, r := range rows {
		rooms = append(rooms, domain.RoomOffer{
			HotelID:   idx.get(r, "tvil_hotel_id"),
			RoomName:  idx.get(r, "room_name"),
			RoomID:    idx.get(r, "room_id"),
			FreeRooms: idx.get(r, "free_rooms"),
			AllRooms:  idx.get(r, "all_rooms"),
			Capacity:  idx.get(r, "room_capacity"),
			Price:     idx.get(r, "price"),
			URL:       idx.get(r, "url"),
		})
	}
	return rooms, nil
}

func (s *Store) WriteStatistics(date string, stats []domain.DailyStatistic) error {
	rows := make([][]string, 0, len(stats))
	for _, st := range stats {
		rows = append(rows, []string{
			st.HotelID,
			st.Name,
			fmt.Sprintf("%d", st.RoomsTotal),
			fmt.Sprintf("%d", st.FreeRooms),
			fmt.Sprintf("%d", st.MaxCapacity),
			st.PercentString(),
			st.Date,
			st.MinPriceString(),
		})
	}
	return writeTable(s.path("statistics", date), statisticsHeader, rows)
}

// writeTable writes atomically: a temp file in the target directory is
// renamed over the destination, so a failed write leaves no partial file.
func writeTable(path string, header []string, rows [][]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create table directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*.csv")
	if err != nil {
		return fmt.Errorf("create temp table file: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(bom); err != nil {
		return err
	}
	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// colIndex maps header names to column positions of the file actually read,
// so column reordering upstream does not silently shift fields.
type colIndex map[string]int

func (c colIndex) get(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func readTable(path string, expected []string) ([][]string, colIndex, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	b = bytes.TrimPrefix(b, bom)

	r := csv.NewReader(bytes.NewReader(b))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("read %s: missing header row", path)
	}
	idx := make(colIndex, len(records[0]))
	for i, name := range records[0] {
		idx[name] = i
	}
	for _, name := range expected {
		if _, ok := idx[name]; !ok {
			return nil, nil, fmt.Errorf("read %s: missing column %q", path, name)
		}
	}
	return records[1:], idx, nil
}
