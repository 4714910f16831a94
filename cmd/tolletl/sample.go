package main

import (
	"fmt"
	"os"
)

// sampleConfig - шаблон конфигурации, повторяющий оригинальный
// ежедневный workflow обработки данных платных дорог
const sampleConfig = `name: toll_traffic_etl
version: "1.0"
description: "De-congest national highways: consolidate toll traffic data"
owner: "Armia Garas"
workdir: staging

schedule:
  interval: 24h
  # at: "06:00"

source:
  url: "https://cf-courses-data.s3.us.cloud-object-storage.appdomain.cloud/IBM-DB0250EN-SkillsNetwork/labs/Final%20Assignment/tolldata.tgz"
  # checksum: ""        # xxh3 хеш (hex), пустое = без проверки
  timeout: 60
  filename: tolldata.tgz

archive:
  expected_members:
    - vehicle-data.csv
    - tollplaza-data.tsv
    - payment-data.txt

extract:
  csv:
    file: vehicle-data.csv
    columns: [0, 1, 2, 3]          # Rowid, Timestamp, Anonymized Vehicle number, Vehicle type
    output: csv_data.csv
  tsv:
    file: tollplaza-data.tsv
    columns: [4, 5, 6]             # Number of axles, Tollplaza id, Tollplaza code
    output: tsv_data.csv
  fixed_width:
    file: payment-data.txt
    ranges:                        # Type of Payment code, Vehicle Code
      - from: 59
        to: 62
      - from: 63
        to: 67
    output: fixed_width_data.csv

consolidate:
  output: extracted_data.csv
  allow_ragged: false              # Расхождение числа строк = ошибка данных

transform:
  uppercase_column: 3              # Vehicle type -> верхний регистр
  output: transformed_data.csv

output:
  type: csv                        # csv или xlsx
  destination: transformed_data/transformed_data.csv
  # headers: [Rowid, Timestamp, "Anonymized Vehicle number", "Vehicle type",
  #           "Number of axles", "Tollplaza id", "Tollplaza code",
  #           "Type of Payment code", "Vehicle Code"]

retry:
  max_attempts: 2                  # Первая попытка + один повтор
  delay_seconds: 300               # 5 минут
  backoff: constant
  journal_path: staging/failed_runs.json

notify:
  on_failure: true
  on_retry: true
  # email:
  #   host: smtp.example.com
  #   port: 25
  #   from: etl@example.com
  #   recipients: [armiaromeel@gmail.com]
  # rabbitmq:
  #   host: localhost
  #   queue: toll-events
  # kafka:
  #   brokers: [localhost:9092]
  #   topic: toll-events

audit:
  enabled: true
  level: standard                  # minimal, standard, full
  output: staging/audit.log
  format: json
  # sqlite: staging/run_history.db

result_log:
  enabled: false
  # address: "127.0.0.1:6379"
  # ttl: 3600
`

// createConfigTemplate creates a sample configuration file
func createConfigTemplate(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists, refusing to overwrite", path)
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Created sample config: %s\n", path)
	fmt.Println("Edit the source URL and notification settings, then run:")
	fmt.Printf("  tolletl --run --config %s\n", path)
	return nil
}
