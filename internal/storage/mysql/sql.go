package mysql

const createStatisticsSQL = `
CREATE TABLE IF NOT EXISTS daily_statistics (
  hotel_id          VARCHAR(32)  NOT NULL,
  stat_date         DATE         NOT NULL,
  name              VARCHAR(512) NOT NULL,
  rooms_num         INT          NOT NULL,
  free_rooms        INT          NOT NULL,
  max_capacity      INT          NOT NULL,
  available_percent DOUBLE       NOT NULL,
  min_price         DECIMAL(12,2) NULL,
  updated_at        TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
  PRIMARY KEY (hotel_id, stat_date)
)
`

const upsertStatisticSQL = `
INSERT INTO daily_statistics
  (hotel_id, stat_date, name, rooms_num, free_rooms, max_capacity, available_percent, min_price)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name              = VALUES(name),
  rooms_num         = VALUES(rooms_num),
  free_rooms        = VALUES(free_rooms),
  max_capacity      = VALUES(max_capacity),
  available_percent = VALUES(available_percent),
  min_price         = VALUES(min_price),
  updated_at        = CURRENT_TIMESTAMP
`

const listStatisticsSQL = `
SELECT hotel_id, name, rooms_num, free_rooms, max_capacity, available_percent, min_price
FROM daily_statistics
WHERE stat_date = ?
ORDER BY hotel_id
`
