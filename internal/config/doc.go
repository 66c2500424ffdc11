// Package config provides configuration management for the delivery board.
//
// # Configuration Sources
//
// Configuration is assembled in order of increasing precedence:
//
//  1. Default values (Default)
//  2. A YAML file: $BOARD_CONFIG, config.yaml or configs/config.yaml
//  3. Environment variables
//
// # Environment Variables
//
// Variables follow the pattern BOARD_<SECTION>_<FIELD>:
//
//	BOARD_SERVER_PORT=8080
//	BOARD_REPORTS_RESERVATIONS_DIR=/mnt/erp/reservas
//	BOARD_REPORTS_REQUISITIONS_DIR=/mnt/erp/requisicoes
//	BOARD_REPORTS_ENCODING=windows1252
//	BOARD_REPORTS_TIMEZONE=America/Sao_Paulo
//	BOARD_STORE_DB_PATH=/var/lib/board/confirmations.db
//	BOARD_SCHEDULE_REFRESH="@every 2m"
//	BOARD_LOGGING_LEVEL=debug
//
// # Example File
//
//	reports:
//	  reservations_dir: /mnt/erp/reservas
//	  requisitions_dir: /mnt/erp/requisicoes
//	  max_records: 300
//	schedule:
//	  refresh: "@every 5m"
//	  reclassify: "0 0 * * *"
//
// Relative paths are resolved against the working directory at load time.
// Load validates the result, including the encoding name and time zone.
package config
