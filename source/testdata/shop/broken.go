package shop

this file does not parse and must be skipped by the store
